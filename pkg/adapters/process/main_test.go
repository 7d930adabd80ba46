package process_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/adapters/process"
	"go.uber.org/goleak"
)

// bridgeEnv switches the test binary into bridge mode when it is re-executed
// as the bridge command.
const bridgeEnv = "MLN_TEST_BRIDGE"

func TestMain(m *testing.M) {
	if mode := os.Getenv(bridgeEnv); mode != "" {
		os.Exit(runBridge(mode))
	}
	goleak.VerifyTestMain(m)
}

func runBridge(mode string) int {
	switch mode {
	case "crash":
		fmt.Fprintln(os.Stderr, "segmentation fault (simulated)")
		return 3
	case "garbage":
		fmt.Println("Traceback (most recent call last):")
		return 0
	case "shape":
		fmt.Println(`{"methods": "GibbsSampler"}`)
		return 0
	case "slow":
		time.Sleep(10 * time.Second)
		return 0
	case "report":
		fmt.Fprintln(os.Stderr, "   1.000  Smokes(Anna)")
	case "failing":
		engine := memory.New()
		engine.Fail(memory.OpLoadModel, errors.New("grammar error in line 3"))
		if err := process.Serve(context.Background(), engine, os.Stdin, os.Stdout); err != nil {
			return 2
		}
		return 1
	}

	if err := process.Serve(context.Background(), memory.New(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// selfBridge configures the test binary itself as bridge.
func selfBridge(mode string) process.Config {
	return process.Config{
		Command:     os.Args[0],
		Environment: map[string]string{bridgeEnv: mode},
	}
}
