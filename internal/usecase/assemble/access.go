package assemble

import (
	"strings"
	"time"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	"github.com/devmedia-cloud/answerdex/internal/domain/chunkctx"
)

// messageInput feeds the pure access-message derivation.
type messageInput struct {
	ContentType domain.ContentType
	Access      chunkctx.AccessState
	EventDate   time.Time
	Tier        string
	HasDiscount bool
	Now         time.Time
}

// accessMessage derives the human-readable access line for a fragment in the
// requested language. Pure: no I/O beyond what the caller already resolved.
func accessMessage(lang domain.Language, in messageInput) string {
	if in.ContentType == domain.ContentTypeEvent {
		return eventMessage(lang, in)
	}
	if in.Access == chunkctx.AccessGranted {
		return msg(lang,
			"Included in your subscription.",
			"In Ihrem Abonnement enthalten.",
			"Inbegrepen in uw abonnement.",
		)
	}

	tier := strings.TrimSpace(in.Tier)
	if tier == "" {
		tier = "Premium"
	}
	switch in.ContentType {
	case domain.ContentTypeVideo:
		return msg(lang,
			"Full video available with a "+tier+" subscription.",
			"Das vollständige Video ist mit einem "+tier+"-Abonnement verfügbar.",
			"De volledige video is beschikbaar met een "+tier+"-abonnement.",
		)
	default:
		return msg(lang,
			"Full text available with a "+tier+" subscription.",
			"Der Volltext ist mit einem "+tier+"-Abonnement verfügbar.",
			"De volledige tekst is beschikbaar met een "+tier+"-abonnement.",
		)
	}
}

func eventMessage(lang domain.Language, in messageInput) string {
	if !in.EventDate.IsZero() && in.EventDate.Before(in.Now) {
		if in.Access == chunkctx.AccessGranted {
			return msg(lang,
				"Recordings are available to attendees.",
				"Aufzeichnungen stehen Teilnehmern zur Verfügung.",
				"Opnames zijn beschikbaar voor deelnemers.",
			)
		}
		return msg(lang,
			"This event has already taken place.",
			"Diese Veranstaltung hat bereits stattgefunden.",
			"Dit evenement heeft al plaatsgevonden.",
		)
	}

	if in.HasDiscount {
		return msg(lang,
			"Tickets are available; your membership discount applies.",
			"Tickets sind verfügbar; Ihr Mitgliederrabatt gilt.",
			"Tickets zijn beschikbaar; uw ledenkorting is van toepassing.",
		)
	}
	return msg(lang,
		"Tickets are available.",
		"Tickets sind verfügbar.",
		"Tickets zijn beschikbaar.",
	)
}

func msg(lang domain.Language, en, de, nl string) string {
	switch lang {
	case domain.LangGerman:
		return de
	case domain.LangDutch:
		return nl
	default:
		return en
	}
}
