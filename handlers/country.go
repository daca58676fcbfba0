package handlers

import (
	"net/http"

	"github.com/akinalp/vita/pkg"
	"github.com/akinalp/vita/services"
)

// CountryHandler, statik ülke listesi endpoint'i.
// Route'u response cache middleware'inden geçer — liste Redis'te tutulur.
type CountryHandler struct {
	countryService services.CountryService
}

// NewCountryHandler, constructor.
func NewCountryHandler(countryService services.CountryService) *CountryHandler {
	return &CountryHandler{countryService: countryService}
}

// List godoc
// GET /api/countries
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	countries := h.countryService.ListCountries(r.Context())
	pkg.JSON(w, http.StatusOK, map[string]any{"countries": countries})
}
