package assistant

import (
	"fmt"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/pbaille/gardenlog/internal/domain"
)

// Message keys. Arguments are referenced by index in every translation.
const (
	msgAskPrompt       = "ask.prompt"
	msgNoLogs          = "logs.none"
	msgNoLogsInYear    = "period.none.year"   // year
	msgNoLogsInPeriod  = "period.none"        //
	msgTreesFound      = "trees.list"         // names
	msgNoTrees         = "trees.none"         //
	msgTreeCount       = "trees.count"        // n
	msgNoPlants        = "plants.none"        //
	msgPlantCount      = "plants.count"       // n
	msgOccurrences     = "occurrences.count"  // n
	msgNoOccurrences   = "occurrences.none"   //
	msgYesMatches      = "yesno.yes"          // n, date, text
	msgNoMatches       = "yesno.no"           //
	msgLastTime        = "latest.last_time"   // date, text, tags
	msgMostRecent      = "latest.most_recent" // date, text, tags
	msgNoMatchingLog   = "latest.none"        //
	msgNoTagsPlacehold = "tags.none"          //
)

type translation struct {
	key string
	en  catalog.Message
	es  catalog.Message
}

var translations = []translation{
	{msgAskPrompt,
		catalog.String("Ask me something about your activity logs."),
		catalog.String("Hazme una pregunta sobre tus registros de actividad.")},
	{msgNoLogs,
		catalog.String("You don't have any activity logs yet."),
		catalog.String("Aún no tienes registros de actividad.")},
	{msgNoLogsInYear,
		catalog.String("You have no logs in %[1]s."),
		catalog.String("No tienes registros en %[1]s.")},
	{msgNoLogsInPeriod,
		catalog.String("You have no logs in that period."),
		catalog.String("No tienes registros en ese periodo.")},
	{msgTreesFound,
		catalog.String("Trees in your logs: %[1]s."),
		catalog.String("Árboles en tus registros: %[1]s.")},
	{msgNoTrees,
		catalog.String("I didn't find any trees in your logs."),
		catalog.String("No encontré árboles en tus registros.")},
	{msgTreeCount,
		plural.Selectf(1, "%d",
			plural.One, "You have logged 1 tree.",
			plural.Other, "You have logged %[1]d trees."),
		plural.Selectf(1, "%d",
			plural.One, "Registraste 1 árbol.",
			plural.Other, "Registraste %[1]d árboles.")},
	{msgNoPlants,
		catalog.String("I didn't find any plants in your logs."),
		catalog.String("No encontré plantas en tus registros.")},
	{msgPlantCount,
		plural.Selectf(1, "%d",
			plural.One, "You have logged 1 plant.",
			plural.Other, "You have logged %[1]d plants."),
		plural.Selectf(1, "%d",
			plural.One, "Registraste 1 planta.",
			plural.Other, "Registraste %[1]d plantas.")},
	{msgOccurrences,
		plural.Selectf(1, "%d",
			plural.One, "You did it 1 time.",
			plural.Other, "You did it %[1]d times."),
		plural.Selectf(1, "%d",
			plural.One, "Lo hiciste 1 vez.",
			plural.Other, "Lo hiciste %[1]d veces.")},
	{msgNoOccurrences,
		catalog.String("I didn't find any matching logs."),
		catalog.String("No encontré registros que coincidan.")},
	{msgYesMatches,
		plural.Selectf(1, "%d",
			plural.One, `Yes, I found 1 matching log. The most recent was on %[2]s: "%[3]s"`,
			plural.Other, `Yes, I found %[1]d matching logs. The most recent was on %[2]s: "%[3]s"`),
		plural.Selectf(1, "%d",
			plural.One, `Sí, encontré 1 registro. El más reciente fue el %[2]s: "%[3]s"`,
			plural.Other, `Sí, encontré %[1]d registros. El más reciente fue el %[2]s: "%[3]s"`)},
	{msgNoMatches,
		catalog.String("No, I didn't find any logs about that."),
		catalog.String("No, no encontré registros sobre eso.")},
	{msgLastTime,
		catalog.String(`The last time was on %[1]s: "%[2]s" (tags: %[3]s)`),
		catalog.String(`La última vez fue el %[1]s: "%[2]s" (etiquetas: %[3]s)`)},
	{msgMostRecent,
		catalog.String(`Your most recent log is from %[1]s: "%[2]s" (tags: %[3]s)`),
		catalog.String(`Tu registro más reciente es del %[1]s: "%[2]s" (etiquetas: %[3]s)`)},
	{msgNoMatchingLog,
		catalog.String("No log matches your question."),
		catalog.String("Ningún registro coincide con tu pregunta.")},
	{msgNoTagsPlacehold,
		catalog.String("none"),
		catalog.String("ninguna")},
}

var messages = func() *catalog.Builder {
	b := catalog.NewBuilder()
	for _, t := range translations {
		if err := b.Set(language.English, t.key, t.en); err != nil {
			panic(fmt.Sprintf("message %q (en): %v", t.key, err))
		}
		if err := b.Set(language.Spanish, t.key, t.es); err != nil {
			panic(fmt.Sprintf("message %q (es): %v", t.key, err))
		}
	}
	return b
}()

var printers = map[domain.Language]*message.Printer{
	domain.English: message.NewPrinter(language.English, message.Catalog(messages)),
	domain.Spanish: message.NewPrinter(language.Spanish, message.Catalog(messages)),
}

func render(lang domain.Language, key string, args ...any) string {
	p, ok := printers[lang]
	if !ok {
		p = printers[domain.English]
	}
	return p.Sprintf(key, args...)
}
