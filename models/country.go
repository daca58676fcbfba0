package models

// Country, statik referans listesindeki bir ülke kaydı.
// DB'de tutulmaz — uygulamaya gömülü liste service katmanında yaşar,
// response cache middleware bu endpoint'i Redis'te cache'ler.
type Country struct {
	Code     string `json:"code"`     // ISO 3166-1 alpha-2 (ör: "TR")
	Name     string `json:"name"`
	Timezone string `json:"timezone"` // Başkent timezone'u (ör: "Europe/Istanbul")
}
