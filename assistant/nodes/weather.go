package dialognode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	nlux "github.com/responsible-nlp/voice-assistant/assistant/nlu"
	weatherx "github.com/responsible-nlp/voice-assistant/pkg/weather"
)

const (
	// Domain defaults applied when neither the utterance nor the remembered
	// context supplies a slot.
	defaultPlace = "Marburg"
	defaultDay   = "today"

	forecastFailureReply = "I couldn't find that forecast."
)

// HandleWeather fills the place/day slots from the utterance, the remembered
// weather context and finally the defaults, then asks the forecast service.
// Collaborator failures become a fixed reply, never an error.
func HandleWeather(ctx context.Context, in *GraphState, svc contractx.WeatherService) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	place := nlux.ExtractLocation(in.Text)
	day := nlux.ExtractDay(in.Text)

	ctxPlace, ctxDay := in.State.WeatherSlots()
	if place == "" {
		place = ctxPlace
	}
	if day == "" {
		day = ctxDay
	}
	if place == "" {
		place = defaultPlace
	}
	if day == "" {
		day = defaultDay
	}

	// Remember the raw day token before resolving it, so a later "tomorrow"
	// follow-up re-resolves against its own date.
	in.State.RememberWeather(place, day)
	resolved := nlux.ResolveDay(day, in.Now)

	forecast, err := svc.ForecastDay(ctx, place, resolved)
	if err != nil {
		log.Warn().Str("place", place).Str("day", resolved).Err(err).Msg("forecast lookup failed")
		in.Reply = forecastFailureReply
		return in, nil
	}

	in.Reply = weatherReply(in.Text, place, day, resolved, forecast)
	return in, nil
}

func weatherReply(text, place, day, resolved string, forecast weatherx.Forecast) string {
	if condition := nlux.ExtractCondition(text); condition != "" {
		verdict := "No."
		if nlux.ConditionMatches(condition, forecast.Description) {
			verdict = "Yes."
		}
		return fmt.Sprintf("%s In %s on %s, expect %s with temperatures between %.0f°C and %.0f°C.",
			verdict, place, titleDay(resolved), forecast.Description, forecast.TempMin, forecast.TempMax)
	}

	if nlux.IsTemperatureQuery(text) {
		return fmt.Sprintf("Temperatures in %s on %s range from %.0f°C to %.0f°C.",
			place, titleDay(resolved), forecast.TempMin, forecast.TempMax)
	}

	if day == defaultDay {
		return fmt.Sprintf("The weather in %s today is %s, with temperatures between %.0f°C and %.0f°C.",
			place, forecast.Description, forecast.TempMin, forecast.TempMax)
	}
	return fmt.Sprintf("The weather in %s on %s will be %s, with temperatures between %.0f°C and %.0f°C.",
		place, titleDay(resolved), forecast.Description, forecast.TempMin, forecast.TempMax)
}

func titleDay(day string) string {
	if day == "" {
		return day
	}
	return strings.ToUpper(day[:1]) + day[1:]
}
