package constants

type (
	NoticeLevel string
	CachePrefix string
	Theme       string
)

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeDanger  NoticeLevel = "danger"

	CachePrefixFlash CachePrefix = "FLASH_"

	ThemeLight        Theme = "light"
	ThemeDark         Theme = "dark"
	ThemeHighContrast Theme = "high-contrast"
)

// ValidThemes lists the themes accepted from the theme cookie
var ValidThemes = map[Theme]bool{
	ThemeLight:        true,
	ThemeDark:         true,
	ThemeHighContrast: true,
}

// Flight statuses offered by the edit form, in display order
var FlightStatuses = []string{
	"Programado",
	"En Vuelo",
	"Retrasado",
	"Aterrizado",
	"Cancelado",
}

// KPI display slots
const (
	SlotTotalFlights  = "total_flights"
	SlotFlightsToday  = "flights_today"
	SlotActiveFlights = "active_flights"
	SlotTotalRevenue  = "total_revenue"
)

// KPISlots is the fixed slot order of the KPI panel
var KPISlots = []string{SlotTotalFlights, SlotFlightsToday, SlotActiveFlights, SlotTotalRevenue}

const (
	PlaceholderMissing = "N/A"
	PlaceholderError   = "Error"
	PlaceholderNoData  = "No data"
)

const SessionCookieName = "skyboard_session"
const ThemeCookieName = "theme_preference"
