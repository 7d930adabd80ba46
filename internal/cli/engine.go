package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/mln/internal/config"
	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/adapters/process"
	"github.com/aretw0/mln/pkg/ports"
)

// DefaultBridge runs the pracmln bridge script shipped in scripts/.
var DefaultBridge = process.Config{
	Command:     "python3",
	Args:        []string{"scripts/pracmln_bridge.py"},
	Description: "pracmln",
}

// engineChoice resolves which engine a command talks to. Flags win over the
// query file.
type engineChoice struct {
	kind   string
	bridge process.Config
}

func (a *App) resolveEngine(cfg *config.Config) (engineChoice, error) {
	choice := engineChoice{kind: config.EngineProcess, bridge: DefaultBridge}
	if cfg != nil {
		choice.kind = cfg.Engine.Kind
		bridge, err := cfg.BridgeConfig(DefaultBridge)
		if err != nil {
			return choice, err
		}
		choice.bridge = bridge
	}
	if a.opts.Engine != "" {
		choice.kind = a.opts.Engine
	}
	if a.opts.BridgeConfig != "" {
		bridge, err := process.LoadConfig(a.opts.BridgeConfig)
		if err != nil {
			return choice, err
		}
		choice.bridge = bridge
	}
	return choice, nil
}

// createService instantiates the engine named by choice.
func createService(choice engineChoice, logger *slog.Logger) (ports.InferenceService, error) {
	switch choice.kind {
	case config.EngineMemory:
		return memory.New(), nil
	case config.EngineProcess, "":
		bridge, err := process.NewBridge(choice.bridge, process.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("error initializing engine bridge: %w", err)
		}
		return bridge, nil
	}
	return nil, fmt.Errorf("unknown engine %q (want %s or %s)", choice.kind, config.EngineMemory, config.EngineProcess)
}
