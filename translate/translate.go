// Package translate formats user visible messages for the current locale.
package translate

import (
	"sync/atomic"

	"github.com/jeandeaual/go-locale"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/message"
)

const DEFAULT_LOCALE = "en-US"

var printer atomic.Pointer[message.Printer]

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Debugf("intcode: locale: %v", err)
	}

	Use(locales...)
}

// Use selects the best match among the locales, in preference order.
// With no locales, DEFAULT_LOCALE is used.
func Use(locales ...string) {
	if len(locales) == 0 {
		locales = []string{DEFAULT_LOCALE}
	}

	printer.Store(message.NewPrinter(message.MatchLanguage(locales...)))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Load().Sprintf(key, args...)
}
