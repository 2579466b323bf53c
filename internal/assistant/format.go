package assistant

import (
	"fmt"
	"time"

	"github.com/pbaille/gardenlog/internal/domain"
)

var spanishMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// FormatDate renders t as a medium date with a short time in the given language.
func FormatDate(t time.Time, lang domain.Language) string {
	if lang == domain.Spanish {
		return fmt.Sprintf("%d %s %d, %02d:%02d", t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}
