package services

import (
	"context"
	"sort"

	"github.com/akinalp/vita/models"
)

// CountryService, onboarding ekranının ülke/timezone seçimi için
// statik referans listesi sunar.
//
// Liste uygulamaya gömülüdür — DB tablosu gerektirmeyecek kadar statik.
// GET /api/countries endpoint'i response cache middleware'inden geçer:
// liste Redis'te cache'lenir, handler'a nadiren düşer.
type CountryService interface {
	ListCountries(ctx context.Context) []models.Country
	GetByCode(ctx context.Context, code string) (*models.Country, bool)
}

type countryService struct {
	countries []models.Country
	byCode    map[string]models.Country
}

// NewCountryService, constructor. Listeyi isme göre sıralar ve
// kod bazlı lookup map'ini hazırlar.
func NewCountryService() CountryService {
	countries := make([]models.Country, len(countryList))
	copy(countries, countryList)
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})

	byCode := make(map[string]models.Country, len(countries))
	for _, c := range countries {
		byCode[c.Code] = c
	}

	return &countryService{countries: countries, byCode: byCode}
}

func (s *countryService) ListCountries(ctx context.Context) []models.Country {
	return s.countries
}

func (s *countryService) GetByCode(ctx context.Context, code string) (*models.Country, bool) {
	c, ok := s.byCode[code]
	if !ok {
		return nil, false
	}
	return &c, true
}

// countryList, desteklenen ülkeler. Timezone, başkentin timezone'udur —
// kullanıcı ülke seçince profil timezone'u için makul bir varsayılan sunar.
var countryList = []models.Country{
	{Code: "AE", Name: "United Arab Emirates", Timezone: "Asia/Dubai"},
	{Code: "AR", Name: "Argentina", Timezone: "America/Argentina/Buenos_Aires"},
	{Code: "AT", Name: "Austria", Timezone: "Europe/Vienna"},
	{Code: "AU", Name: "Australia", Timezone: "Australia/Sydney"},
	{Code: "BE", Name: "Belgium", Timezone: "Europe/Brussels"},
	{Code: "BR", Name: "Brazil", Timezone: "America/Sao_Paulo"},
	{Code: "CA", Name: "Canada", Timezone: "America/Toronto"},
	{Code: "CH", Name: "Switzerland", Timezone: "Europe/Zurich"},
	{Code: "CL", Name: "Chile", Timezone: "America/Santiago"},
	{Code: "CN", Name: "China", Timezone: "Asia/Shanghai"},
	{Code: "CZ", Name: "Czechia", Timezone: "Europe/Prague"},
	{Code: "DE", Name: "Germany", Timezone: "Europe/Berlin"},
	{Code: "DK", Name: "Denmark", Timezone: "Europe/Copenhagen"},
	{Code: "EG", Name: "Egypt", Timezone: "Africa/Cairo"},
	{Code: "ES", Name: "Spain", Timezone: "Europe/Madrid"},
	{Code: "FI", Name: "Finland", Timezone: "Europe/Helsinki"},
	{Code: "FR", Name: "France", Timezone: "Europe/Paris"},
	{Code: "GB", Name: "United Kingdom", Timezone: "Europe/London"},
	{Code: "GR", Name: "Greece", Timezone: "Europe/Athens"},
	{Code: "HU", Name: "Hungary", Timezone: "Europe/Budapest"},
	{Code: "ID", Name: "Indonesia", Timezone: "Asia/Jakarta"},
	{Code: "IE", Name: "Ireland", Timezone: "Europe/Dublin"},
	{Code: "IL", Name: "Israel", Timezone: "Asia/Jerusalem"},
	{Code: "IN", Name: "India", Timezone: "Asia/Kolkata"},
	{Code: "IT", Name: "Italy", Timezone: "Europe/Rome"},
	{Code: "JP", Name: "Japan", Timezone: "Asia/Tokyo"},
	{Code: "KR", Name: "South Korea", Timezone: "Asia/Seoul"},
	{Code: "MX", Name: "Mexico", Timezone: "America/Mexico_City"},
	{Code: "MY", Name: "Malaysia", Timezone: "Asia/Kuala_Lumpur"},
	{Code: "NL", Name: "Netherlands", Timezone: "Europe/Amsterdam"},
	{Code: "NO", Name: "Norway", Timezone: "Europe/Oslo"},
	{Code: "NZ", Name: "New Zealand", Timezone: "Pacific/Auckland"},
	{Code: "PL", Name: "Poland", Timezone: "Europe/Warsaw"},
	{Code: "PT", Name: "Portugal", Timezone: "Europe/Lisbon"},
	{Code: "RO", Name: "Romania", Timezone: "Europe/Bucharest"},
	{Code: "SA", Name: "Saudi Arabia", Timezone: "Asia/Riyadh"},
	{Code: "SE", Name: "Sweden", Timezone: "Europe/Stockholm"},
	{Code: "SG", Name: "Singapore", Timezone: "Asia/Singapore"},
	{Code: "TH", Name: "Thailand", Timezone: "Asia/Bangkok"},
	{Code: "TR", Name: "Türkiye", Timezone: "Europe/Istanbul"},
	{Code: "UA", Name: "Ukraine", Timezone: "Europe/Kyiv"},
	{Code: "US", Name: "United States", Timezone: "America/New_York"},
	{Code: "VN", Name: "Vietnam", Timezone: "Asia/Ho_Chi_Minh"},
	{Code: "ZA", Name: "South Africa", Timezone: "Africa/Johannesburg"},
}
