package sqlite

import (
	"fmt"
	"strconv"
	"time"
)

// Text scans any SQLite storage class into its textual form. NULL becomes "".
// Reals are rendered without exponent so prices like 1500000.0 stay digits.
type Text string

// Scan implements sql.Scanner.
func (t *Text) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(v)
	case []byte:
		*t = Text(v)
	case int64:
		*t = Text(strconv.FormatInt(v, 10))
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		*t = Text(v.Format(time.RFC3339))
	case bool:
		*t = Text(strconv.FormatBool(v))
	default:
		return fmt.Errorf("sqlite: cannot scan %T into text", src)
	}
	return nil
}
