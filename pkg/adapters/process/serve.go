package process

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/mln/pkg/ports"
)

// Serve answers one bridge request read from r by delegating to svc, and
// writes the reply to w. It lets any InferenceService act as a bridge
// process, which is how the bridge protocol is tested end to end.
// Engine failures are reported in the reply; the returned error only covers
// protocol I/O.
func Serve(ctx context.Context, svc ports.InferenceService, r io.Reader, w io.Writer) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return writeReply(w, Reply{Error: fmt.Sprintf("decode request: %v", err)})
	}

	reply, err := handle(ctx, svc, req)
	if err != nil {
		reply = Reply{Error: err.Error()}
	}
	return writeReply(w, reply)
}

func writeReply(w io.Writer, reply Reply) error {
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	return nil
}

func handle(ctx context.Context, svc ports.InferenceService, req Request) (Reply, error) {
	switch req.Op {
	case OpMethods:
		ids, err := svc.DiscoverMethods(ctx)
		return Reply{Methods: ids}, err

	case OpInstantiate:
		_, err := svc.InstantiateMethod(ctx, req.Method)
		return Reply{}, err

	case OpLoadModel:
		m, err := loadModel(ctx, svc, req.Model)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Fingerprint: m.Fingerprint()}, nil

	case OpLoadDatabase, OpParseDatabase:
		m, err := loadModel(ctx, svc, req.Model)
		if err != nil {
			return Reply{}, err
		}
		var dbs []ports.DatabaseArtifact
		if req.Op == OpLoadDatabase {
			dbs, err = svc.LoadDatabaseFile(ctx, m, req.Path)
		} else {
			dbs, err = svc.ParseDatabase(ctx, m, textOf(req))
		}
		return Reply{Databases: len(dbs)}, err

	case OpInfer:
		return infer(ctx, svc, req)

	default:
		return Reply{}, fmt.Errorf("unknown operation %q", req.Op)
	}
}

func infer(ctx context.Context, svc ports.InferenceService, req Request) (Reply, error) {
	if req.Database == nil {
		return Reply{}, fmt.Errorf("infer: database is required")
	}
	m, err := loadModel(ctx, svc, req.Model)
	if err != nil {
		return Reply{}, err
	}

	var dbs []ports.DatabaseArtifact
	if req.Database.IsFile {
		dbs, err = svc.LoadDatabaseFile(ctx, m, req.Database.Source)
	} else {
		dbs, err = svc.ParseDatabase(ctx, m, req.Database.Source)
	}
	if err != nil {
		return Reply{}, err
	}
	if req.Database.Index < 0 || req.Database.Index >= len(dbs) {
		return Reply{}, fmt.Errorf("infer: database %d out of range (%d databases)", req.Database.Index, len(dbs))
	}

	method, err := svc.InstantiateMethod(ctx, req.Method)
	if err != nil {
		return Reply{}, err
	}

	h, err := svc.RunInference(ctx, ports.InferenceRequest{
		Model:    m,
		Database: dbs[req.Database.Index],
		Method:   method,
		Settings: req.Settings.Domain(),
	})
	if err != nil {
		return Reply{}, err
	}
	if err := h.Execute(ctx); err != nil {
		return Reply{}, err
	}
	probs, err := h.AtomProbabilities()
	if err != nil {
		return Reply{}, err
	}
	return Reply{Results: probs}, nil
}

func loadModel(ctx context.Context, svc ports.InferenceService, ref *ModelRef) (ports.ModelArtifact, error) {
	if ref == nil {
		return nil, fmt.Errorf("model is required")
	}
	return svc.LoadModel(ctx, ref.Text, ref.Logic, ref.Grammar)
}

func textOf(req Request) string {
	if req.Text == nil {
		return ""
	}
	return *req.Text
}
