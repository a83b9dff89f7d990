package contacts

import (
	"fmt"
	"time"
)

// NullDate scans aggregate date expressions (MAX over interaction dates).
// Drivers disagree on the value type for computed columns: postgres hands
// back time.Time, sqlite hands back the stored text, so both are accepted.
type NullDate struct {
	Time  time.Time
	Valid bool
}

var dateScanLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (d *NullDate) Scan(value interface{}) error {
	d.Time, d.Valid = time.Time{}, false

	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		d.Time, d.Valid = v, true
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into NullDate", value)
	}
}

func (d *NullDate) parse(s string) error {
	if s == "" {
		return nil
	}
	for _, layout := range dateScanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time, d.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as date", s)
}
