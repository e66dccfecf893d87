package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	"github.com/responsible-nlp/voice-assistant/assistant/orchestrator"
	promptx "github.com/responsible-nlp/voice-assistant/assistant/prompt"
	speechx "github.com/responsible-nlp/voice-assistant/assistant/speech"
	statex "github.com/responsible-nlp/voice-assistant/assistant/state"
	calendarx "github.com/responsible-nlp/voice-assistant/pkg/calendar"
	configx "github.com/responsible-nlp/voice-assistant/pkg/config"
	_ "github.com/responsible-nlp/voice-assistant/pkg/logger/autoload"
	ollamax "github.com/responsible-nlp/voice-assistant/pkg/ollama"
	weatherx "github.com/responsible-nlp/voice-assistant/pkg/weather"
)

type AppConfig struct {
	StateBackend string `envconfig:"STATE_BACKEND" split_words:"true" default:"file"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("ASSISTANT")

	weatherCfg := configx.MustNew[weatherx.Config]("OPENWEATHER")
	calendarCfg := configx.MustNew[calendarx.Config]("CALENDAR")
	ollamaCfg := configx.MustNew[ollamax.Config]("OLLAMA")

	store := newStore(appCfg.StateBackend)

	bot, err := orchestrator.New(
		store,
		weatherx.MustNew(*weatherCfg),
		calendarx.MustNew(*calendarCfg),
		ollamax.MustNew(*ollamaCfg),
		promptx.System(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	console := speechx.NewConsole()
	runLoop(context.Background(), bot, console, console)
}

func newStore(backend string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "redis":
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		store, err := statex.NewRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build redis store")
		}
		return store
	default:
		fileCfg := configx.MustNew[statex.FileConfig]("STATE")
		store, err := statex.NewFileStore(*fileCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build file store")
		}
		return store
	}
}

func runLoop(ctx context.Context, bot *orchestrator.Orchestrator, listener contractx.Recognizer, speaker contractx.Synthesizer) {
	for {
		text, err := listener.ListenOnce(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Msg("listening failed")
			}
			return
		}

		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return
		}

		reply := bot.Generate(ctx, text)
		if err := speaker.Speak(ctx, reply); err != nil {
			log.Warn().Err(err).Msg("speaking failed")
			return
		}
	}
}
