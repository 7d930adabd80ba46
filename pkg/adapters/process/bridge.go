// Package process implements ports.InferenceService on top of an external
// engine bridge, such as scripts/pracmln_bridge.py.
//
// The bridge is started once per engine call. It reads one JSON Request on
// stdin and writes one JSON Reply on stdout. It keeps no state between
// calls, so artifacts carry the inputs needed to rebuild them.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/mln/internal/logging"
	"github.com/aretw0/mln/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Bridge implements ports.InferenceService by running a bridge process.
type Bridge struct {
	cfg    Config
	out    io.Writer
	logger *slog.Logger
}

// BridgeOption configures the bridge.
type BridgeOption func(*Bridge)

// WithOutput sets where persisted results are written. Defaults to io.Discard.
func WithOutput(w io.Writer) BridgeOption {
	return func(b *Bridge) {
		b.out = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// NewBridge creates a bridge client for the configured command.
func NewBridge(cfg Config, opts ...BridgeOption) (*Bridge, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("bridge command is required")
	}
	b := &Bridge{
		cfg:    cfg,
		out:    io.Discard,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// call runs the bridge once for req and decodes its reply.
func (b *Bridge) call(ctx context.Context, req Request) (Reply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: encode request: %w", req.Op, err)
	}

	if b.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(b.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.cfg.Command, b.cfg.Args...)
	cmd.Dir = b.cfg.Dir
	env := cmd.Environ()
	for k, v := range b.cfg.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	b.logger.Debug("bridge call", "op", req.Op, "duration", time.Since(start), "exit_err", runErr)

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Reply{}, fmt.Errorf("%s: %w", req.Op, ctxErr)
		}
		// A failing bridge may still have reported a structured error.
		if reply, err := decodeReply(stdout.Bytes()); err == nil && reply.Error != "" {
			return Reply{}, fmt.Errorf("%s: %s", req.Op, reply.Error)
		}
		return Reply{}, fmt.Errorf("%s: bridge failed: %w (stderr: %s)", req.Op, runErr, strings.TrimSpace(stderr.String()))
	}

	if report := strings.TrimSpace(stderr.String()); report != "" {
		b.logger.Debug("bridge report", "op", req.Op, "stderr", report)
	}

	reply, err := decodeReply(stdout.Bytes())
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", req.Op, err)
	}
	if reply.Error != "" {
		return Reply{}, fmt.Errorf("%s: %s", req.Op, reply.Error)
	}
	return reply, nil
}

// decodeReply parses the bridge output loosely, then shape-checks it into a Reply.
func decodeReply(data []byte) (Reply, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Reply{}, fmt.Errorf("bridge produced no output")
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Reply{}, fmt.Errorf("bridge output is not a JSON object: %w", err)
	}

	var reply Reply
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &reply,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return Reply{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Reply{}, fmt.Errorf("unexpected reply shape: %w", err)
	}
	return reply, nil
}

// DiscoverMethods implements ports.InferenceService.
func (b *Bridge) DiscoverMethods(ctx context.Context) ([]string, error) {
	reply, err := b.call(ctx, Request{Op: OpMethods})
	if err != nil {
		return nil, err
	}
	if len(reply.Methods) == 0 {
		return nil, fmt.Errorf("%s: bridge reported no methods", OpMethods)
	}
	return reply.Methods, nil
}

// InstantiateMethod implements ports.InferenceService.
// The bridge validates the identifier; the handle itself is just the name.
func (b *Bridge) InstantiateMethod(ctx context.Context, id string) (ports.MethodHandle, error) {
	if _, err := b.call(ctx, Request{Op: OpInstantiate, Method: id}); err != nil {
		return nil, err
	}
	return method(id), nil
}

// LoadModel implements ports.InferenceService.
func (b *Bridge) LoadModel(ctx context.Context, text, logic, grammar string) (ports.ModelArtifact, error) {
	ref := ModelRef{Text: text, Logic: logic, Grammar: grammar}
	reply, err := b.call(ctx, Request{Op: OpLoadModel, Model: &ref})
	if err != nil {
		return nil, err
	}
	return &model{ref: ref, fingerprint: reply.Fingerprint}, nil
}

// LoadDatabaseFile implements ports.InferenceService.
func (b *Bridge) LoadDatabaseFile(ctx context.Context, m ports.ModelArtifact, path string) ([]ports.DatabaseArtifact, error) {
	return b.databases(ctx, m, Request{Op: OpLoadDatabase, Path: path}, path, true)
}

// ParseDatabase implements ports.InferenceService.
func (b *Bridge) ParseDatabase(ctx context.Context, m ports.ModelArtifact, text string) ([]ports.DatabaseArtifact, error) {
	return b.databases(ctx, m, Request{Op: OpParseDatabase, Text: &text}, text, false)
}

func (b *Bridge) databases(ctx context.Context, m ports.ModelArtifact, req Request, source string, isFile bool) ([]ports.DatabaseArtifact, error) {
	mdl, ok := m.(*model)
	if !ok || mdl == nil {
		return nil, fmt.Errorf("%s: model artifact was not created by this bridge", req.Op)
	}
	req.Model = &mdl.ref

	reply, err := b.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if reply.Databases < 0 {
		return nil, fmt.Errorf("%s: negative database count %d", req.Op, reply.Databases)
	}

	out := make([]ports.DatabaseArtifact, reply.Databases)
	for i := range out {
		out[i] = &database{model: mdl, ref: DatabaseRef{Source: source, IsFile: isFile, Index: i}}
	}
	return out, nil
}

// RunInference implements ports.InferenceService. The bridge is invoked by
// the returned handle's Execute.
func (b *Bridge) RunInference(ctx context.Context, req ports.InferenceRequest) (ports.ResultHandle, error) {
	mdl, ok := req.Model.(*model)
	if !ok || mdl == nil {
		return nil, fmt.Errorf("%s: model artifact was not created by this bridge", OpInfer)
	}
	db, ok := req.Database.(*database)
	if !ok || db == nil {
		return nil, fmt.Errorf("%s: database artifact was not created by this bridge", OpInfer)
	}
	if db.model != mdl {
		return nil, fmt.Errorf("%s: database was built against a different model", OpInfer)
	}
	if req.Method == nil {
		return nil, fmt.Errorf("%s: no method", OpInfer)
	}

	dbRef := db.ref
	return &result{
		bridge: b,
		req: Request{
			Op:       OpInfer,
			Method:   req.Method.ID(),
			Model:    &mdl.ref,
			Database: &dbRef,
			Settings: NewSettings(req.Settings),
		},
	}, nil
}

type method string

func (m method) ID() string { return string(m) }

type model struct {
	ref         ModelRef
	fingerprint string
}

func (m *model) Fingerprint() string { return m.fingerprint }

type database struct {
	model *model
	ref   DatabaseRef
}

func (d *database) Fingerprint() string {
	if d.ref.IsFile {
		return fmt.Sprintf("%s#%d", d.ref.Source, d.ref.Index)
	}
	return fmt.Sprintf("inline#%d", d.ref.Index)
}

type result struct {
	bridge *Bridge
	req    Request
	probs  map[string]float64
}

// Execute runs the inference in the bridge.
func (r *result) Execute(ctx context.Context) error {
	reply, err := r.bridge.call(ctx, r.req)
	if err != nil {
		return err
	}
	if reply.Results == nil {
		reply.Results = map[string]float64{}
	}
	r.probs = reply.Results
	return nil
}

// Persist writes the results to the configured output, one atom per line.
func (r *result) Persist(ctx context.Context) error {
	if r.probs == nil {
		return fmt.Errorf("persist before execute")
	}
	atoms := make([]string, 0, len(r.probs))
	for atom := range r.probs {
		atoms = append(atoms, atom)
	}
	sort.Strings(atoms)
	for _, atom := range atoms {
		if _, err := fmt.Fprintf(r.bridge.out, "%8.3f  %s\n", r.probs[atom], atom); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	return nil
}

// AtomProbabilities returns a copy of the executed results.
func (r *result) AtomProbabilities() (map[string]float64, error) {
	if r.probs == nil {
		return nil, fmt.Errorf("results requested before execute")
	}
	out := make(map[string]float64, len(r.probs))
	for k, v := range r.probs {
		out[k] = v
	}
	return out, nil
}
