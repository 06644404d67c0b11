package model

import "strconv"

// Setting keys the core reads. Everything else in the settings table
// belongs to receipt rendering and is passed through untouched.
const (
	SettingTokenResetDaily = "token_reset_daily"
	SettingBillResetDaily  = "bill_reset_daily"
	SettingTokenPrefix     = "token_prefix"
	SettingBillPrefix      = "bill_prefix"
	SettingLastResetDate   = "last_reset_date"

	SettingHotelName    = "hotel_name"
	SettingHotelAddress = "hotel_address"
	SettingPrinterName  = "printer_name"
	SettingBillFooter   = "bill_footer"
	SettingEnableTables = "enable_tables"
)

// Settings is the persisted flat key/value map. Typed access goes through
// the helpers below; raw strings never travel past this boundary.
type Settings map[string]string

// Bool reads a boolean setting. Missing or malformed values fall back to
// def rather than failing the caller.
func (s Settings) Bool(key string, def bool) bool {
	v, ok := s[key]
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Int reads an integer setting with a default for missing or malformed
// values.
func (s Settings) Int(key string, def int) int {
	v, ok := s[key]
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// String reads a string setting with a default for missing values.
func (s Settings) String(key, def string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return def
}
