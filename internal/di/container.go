package di

import (
	"context"
	"io"
	"time"

	"agent-bridge/internal/adapter/tool"
	"agent-bridge/internal/application/port/input"
	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/browser/rod"
	"agent-bridge/internal/infrastructure/events"
	"agent-bridge/internal/infrastructure/llm"
	"agent-bridge/internal/infrastructure/logger"
	"agent-bridge/internal/usecase/agent"
	"agent-bridge/internal/usecase/bridge"
	"agent-bridge/internal/usecase/evaluator"

	"github.com/google/uuid"
)

type Container struct {
	Logger output.LoggerPort
	Bridge *bridge.Bridge
	RunID  string

	rootLogger output.LoggerPort
}

type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string

	BrowserHeadless  bool
	BrowserNoSandbox bool
	BrowserBin       string
	BrowserTimeout   time.Duration

	MaxSteps    int
	MaxFailures int
	UseVision   bool
	Verify      bool

	LogDir string
}

func ConfigFromEnv(env output.ConfigPort) Config {
	return Config{
		OpenAIAPIKey:     env.Get("OPENAI_API_KEY"),
		OpenAIBaseURL:    env.Get("OPENAI_BASE_URL"),
		OllamaBaseURL:    env.Get("OLLAMA_BASE_URL"),
		BrowserHeadless:  env.GetBool("BROWSER_HEADLESS", true),
		BrowserNoSandbox: env.GetBool("BROWSER_NO_SANDBOX", false),
		BrowserBin:       env.Get("BROWSER_BIN"),
		BrowserTimeout:   time.Duration(env.GetInt("BROWSER_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxSteps:         env.GetInt("AGENT_MAX_STEPS", 25),
		MaxFailures:      env.GetInt("AGENT_MAX_FAILURES", 3),
		UseVision:        env.GetBool("AGENT_USE_VISION", true),
		Verify:           env.GetBool("AGENT_VERIFY", false),
		LogDir:           env.GetWithDefault("LOG_DIR", "log"),
	}
}

// NewContainer wires one bridge session for args (positional arguments
// without the program name). Events go to stdout, logs to a file named after
// the task. The file is only created for a runnable invocation; a usage error
// or a log file that cannot be created silences logging instead.
func NewContainer(cfg Config, stdout io.Writer, args []string) *Container {
	runID := uuid.NewString()

	base := newRootLogger(cfg.LogDir, args)
	log := base.WithField("run_id", runID)

	emitter := events.NewEmitter(stdout)

	factories := bridge.Factories{
		NewLLM: func(provider entity.Provider, model string) (output.LLMPort, error) {
			return llm.NewProvider(provider, model, llm.Settings{
				OpenAIAPIKey:  cfg.OpenAIAPIKey,
				OpenAIBaseURL: cfg.OpenAIBaseURL,
				OllamaBaseURL: cfg.OllamaBaseURL,
				Logger:        log,
			})
		},
		NewBrowser: func(ctx context.Context) (output.BrowserPort, error) {
			browserCfg := rod.DefaultConfig()
			browserCfg.Headless = cfg.BrowserHeadless
			browserCfg.NoSandbox = cfg.BrowserNoSandbox
			browserCfg.Bin = cfg.BrowserBin
			if cfg.BrowserTimeout > 0 {
				browserCfg.Timeout = cfg.BrowserTimeout
			}
			browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
			if err != nil {
				return nil, err
			}
			return browser, nil
		},
		NewAgent: func(task string, llm output.LLMPort, browser output.BrowserPort) (input.AgentRunner, error) {
			tools := service.NewToolRegistry()
			tool.RegisterBrowserTools(tools, browser, log.Named("tool"))

			agentCfg := agent.DefaultConfig(task)
			agentCfg.UseVision = cfg.UseVision
			agentCfg.MaxSteps = cfg.MaxSteps
			agentCfg.MaxFailures = cfg.MaxFailures

			a, err := agent.New(agentCfg, llm, browser, tools, log.Named("agent"))
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		NewVerifier: func(llm output.LLMPort) bridge.Verifier {
			return evaluator.New(llm, log.Named("evaluator"))
		},
	}

	return &Container{
		Logger: log,
		Bridge: bridge.New(factories, emitter, log.Named("bridge"), cfg.Verify),
		RunID:  runID,

		rootLogger: base,
	}
}

func newRootLogger(dir string, args []string) output.LoggerPort {
	if len(args) < bridge.MinArgs {
		return logger.NewNopLogger()
	}
	fileLog, err := logger.NewLoggerAdapter(dir, args[3])
	if err != nil {
		return logger.NewNopLogger()
	}
	return fileLog
}

// Close flushes the log file. The browser belongs to the bridge run, not the container.
func (c *Container) Close() {
	if c.rootLogger != nil {
		_ = c.rootLogger.Close()
	}
}
