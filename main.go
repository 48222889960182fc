package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"ai_email_copywriter/config"
	"ai_email_copywriter/generator"
	"ai_email_copywriter/logger"
	"ai_email_copywriter/render"
	"ai_email_copywriter/server"
	"ai_email_copywriter/store"
)

var verbose bool

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.json")
	promptPath := flag.String("prompt", "", "path to a prompt configuration JSON file")
	example := flag.Bool("example", false, "use the built-in example configuration")
	count := flag.Int("count", 1, "number of email variants to generate (1-5)")
	mock := flag.Bool("mock", false, "use the offline mock model")
	asHTML := flag.Bool("html", false, "print an HTML preview instead of plain text")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mock {
		cfg.LLM.Provider = "mock"
	}
	log, err := logger.New(cfg.Log.Mode, verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// Web server mode
	if *serve {
		ctx := context.Background()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer st.Close()

		srv, err := server.New(llmFactory(cfg.LLM), st, cfg.UserID, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		log.Warn("starting web server", "addr", listen, "provider", cfg.LLM.Provider, "store", cfg.Store.Driver)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *promptPath == "" && !*example {
		fmt.Fprintln(os.Stderr, "--prompt or --example is required (or --serve)")
		os.Exit(1)
	}

	promptData := generator.ExampleConfiguration()
	if *promptPath != "" {
		promptData, err = loadPrompt(*promptPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	llm, err := buildLLM(cfg.LLM, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, generator.UserMessage(err), err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sess := generator.NewSession("cli", promptData, agent)
	if err := sess.SetConfig(promptData); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	n := sess.SetCount(*count)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log.Info("generating", "count", n, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	emails, err := sess.Generate(ctx)
	if err != nil {
		log.Error("generation failed", "error", err)
		fmt.Fprintln(os.Stderr, generator.UserMessage(err))
		os.Exit(1)
	}
	log.Info("generation done", "received", len(emails))

	for i, email := range emails {
		if i > 0 {
			fmt.Println("\n----------------------------------------")
		}
		if !*asHTML {
			fmt.Println(render.PlainText(email))
			continue
		}
		preview, err := render.Email(email, promptData.ImagePlacement.Image)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(preview.HTML)
	}
}

func loadPrompt(path string) (generator.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return generator.Configuration{}, err
	}
	cfg := generator.DefaultConfiguration()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return generator.Configuration{}, fmt.Errorf("parse prompt %s: %w", path, err)
	}
	return cfg, nil
}

// buildLLM resolves the configured provider; apiKey, when set, replaces
// the configured key.
func buildLLM(cfg config.LLMConfig, apiKey string) (generator.LLMClient, error) {
	settings := generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
	if apiKey != "" {
		settings.APIKey = apiKey
	}
	return generator.NewLLM(settings)
}

func llmFactory(cfg config.LLMConfig) server.LLMFactory {
	return func(apiKey string) (generator.LLMClient, error) {
		return buildLLM(cfg, apiKey)
	}
}
