package intelligence

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memcortex/internal/graph"
)

const (
	argumentPro = "PRO"
	argumentCon = "CON"
)

// CreateDecision records a technical decision with structured rationale.
// Each pro and con becomes an Argument node tagged with its ordinal
// position. Alternatives are merged by text, so the same alternative can be
// referenced by multiple decisions without duplication, and linked with
// CHOSEN_OVER, flagged chosen=false.
func (e *Engine) CreateDecision(ctx context.Context, text, userID string, pros, cons, alternatives []string, metadata map[string]any) (*DecisionResult, error) {
	decisionID := "decision_" + uuid.New().String()

	props := map[string]any{
		graph.PropText:    text,
		graph.PropUserID:  userID,
		graph.PropCreated: e.now(),
		graph.PropChosen:  true,
	}
	if metadata != nil {
		props[graph.PropMetadata] = metadata
	}
	if err := e.store.UpsertNode(ctx, graph.KindDecision, decisionID, props); err != nil {
		return nil, err
	}

	if err := e.addArguments(ctx, decisionID, argumentPro, graph.RelBasedOn, pros); err != nil {
		return nil, err
	}
	if err := e.addArguments(ctx, decisionID, argumentCon, graph.RelConsidered, cons); err != nil {
		return nil, err
	}

	for _, alt := range alternatives {
		altID, err := e.findOrCreateAlternative(ctx, alt)
		if err != nil {
			return nil, err
		}
		err = e.store.UpsertEdge(ctx, graph.RelChosenOver, decisionRef(decisionID), decisionRef(altID), nil)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Info("Decision recorded",
		zap.String("decision_id", decisionID),
		zap.String("user_id", userID),
		zap.Int("pros", len(pros)),
		zap.Int("cons", len(cons)),
		zap.Int("alternatives", len(alternatives)),
	)

	return &DecisionResult{
		DecisionID:   decisionID,
		Text:         text,
		Pros:         emptyIfNil(pros),
		Cons:         emptyIfNil(cons),
		Alternatives: emptyIfNil(alternatives),
	}, nil
}

func (e *Engine) addArguments(ctx context.Context, decisionID, argType, edgeKind string, texts []string) error {
	for i, text := range texts {
		argID := "arg_" + uuid.New().String()
		props := map[string]any{
			graph.PropType:  argType,
			graph.PropText:  text,
			graph.PropOrder: i,
		}
		if err := e.store.UpsertNode(ctx, graph.KindArgument, argID, props); err != nil {
			return err
		}
		ref := graph.NodeRef{Kind: graph.KindArgument, Key: argID}
		if err := e.store.UpsertEdge(ctx, edgeKind, decisionRef(decisionID), ref, nil); err != nil {
			return err
		}
	}
	return nil
}

// findOrCreateAlternative merges alternative decisions by text. The
// generated id is best-effort unique; the text is the canonical identity.
func (e *Engine) findOrCreateAlternative(ctx context.Context, text string) (string, error) {
	existing, err := e.store.NodesByProperty(ctx, graph.KindDecision, graph.PropText, text)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return existing[0].Key, nil
	}

	altID := "alt_" + uuid.New().String()
	props := map[string]any{
		graph.PropText:    text,
		graph.PropCreated: e.now(),
		graph.PropChosen:  false,
	}
	if err := e.store.UpsertNode(ctx, graph.KindDecision, altID, props); err != nil {
		return "", err
	}
	return altID, nil
}

// DecisionRationale aggregates the complete rationale behind a decision:
// pros and cons in their original order, and the alternatives it was chosen
// over. Duplicate and empty argument texts are dropped.
func (e *Engine) DecisionRationale(ctx context.Context, decisionID string) (*RationaleResult, error) {
	node, err := e.store.GetNode(ctx, graph.KindDecision, decisionID)
	if err != nil {
		return nil, err
	}

	pros, err := e.collectArguments(ctx, decisionID, graph.RelBasedOn, argumentPro)
	if err != nil {
		return nil, err
	}
	cons, err := e.collectArguments(ctx, decisionID, graph.RelConsidered, argumentCon)
	if err != nil {
		return nil, err
	}

	altEdges, err := e.store.Edges(ctx, decisionRef(decisionID), graph.Outgoing, []string{graph.RelChosenOver})
	if err != nil {
		return nil, err
	}
	alternatives := make([]string, 0, len(altEdges))
	seen := make(map[string]bool)
	for _, edge := range altEdges {
		alt, err := e.store.GetNode(ctx, graph.KindDecision, edge.To.Key)
		if err != nil {
			continue
		}
		text := graph.StringProp(alt, graph.PropText)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		alternatives = append(alternatives, text)
	}

	created, _ := graph.CreatedTime(node)
	metadata, _ := node.Props[graph.PropMetadata].(map[string]any)

	return &RationaleResult{
		Decision:               graph.StringProp(node, graph.PropText),
		Created:                created,
		Metadata:               metadata,
		Pros:                   pros,
		Cons:                   cons,
		AlternativesConsidered: alternatives,
	}, nil
}

func (e *Engine) collectArguments(ctx context.Context, decisionID, edgeKind, argType string) ([]string, error) {
	edges, err := e.store.Edges(ctx, decisionRef(decisionID), graph.Outgoing, []string{edgeKind})
	if err != nil {
		return nil, err
	}

	type arg struct {
		text  string
		order int
	}
	var args []arg
	for _, edge := range edges {
		node, err := e.store.GetNode(ctx, graph.KindArgument, edge.To.Key)
		if err != nil {
			continue
		}
		if graph.StringProp(node, graph.PropType) != argType {
			continue
		}
		args = append(args, arg{
			text:  graph.StringProp(node, graph.PropText),
			order: intProp(node.Props[graph.PropOrder]),
		})
	}

	sort.SliceStable(args, func(i, j int) bool { return args[i].order < args[j].order })

	texts := make([]string, 0, len(args))
	seen := make(map[string]bool)
	for _, a := range args {
		if a.text == "" || seen[a.text] {
			continue
		}
		seen[a.text] = true
		texts = append(texts, a.text)
	}
	return texts, nil
}

// RecordValidation attaches a validation outcome to a memory. Only
// validations with result "confirmed" feed the trust score.
func (e *Engine) RecordValidation(ctx context.Context, memoryID, result string) (*ValidationResult, error) {
	if _, err := e.store.GetNode(ctx, graph.KindMemory, memoryID); err != nil {
		return nil, err
	}

	validationID := "validation_" + uuid.New().String()
	props := map[string]any{
		graph.PropResult:  result,
		graph.PropCreated: e.now(),
	}
	if err := e.store.UpsertNode(ctx, graph.KindValidation, validationID, props); err != nil {
		return nil, err
	}

	ref := graph.NodeRef{Kind: graph.KindValidation, Key: validationID}
	if err := e.store.UpsertEdge(ctx, graph.RelValidates, ref, memoryRef(memoryID), nil); err != nil {
		return nil, err
	}

	return &ValidationResult{ValidationID: validationID, MemoryID: memoryID, Result: result}, nil
}

// TrustScore computes a composite trust score for a memory from confirmed
// validations, citations by other memories, and recency:
//
//	score = 2*validations + citations + max(0, 10 - ageDays/30)
//
// The score is written back onto the memory so later reads see the cached
// value; recomputation overwrites rather than averages.
func (e *Engine) TrustScore(ctx context.Context, memoryID string) (*TrustReport, error) {
	node, err := e.store.GetNode(ctx, graph.KindMemory, memoryID)
	if err != nil {
		return nil, err
	}

	incoming, err := e.store.Edges(ctx, memoryRef(memoryID), graph.Incoming, []string{graph.RelValidates, graph.RelCites})
	if err != nil {
		return nil, err
	}

	validations := 0
	citations := make(map[string]bool)
	for _, edge := range incoming {
		switch edge.Kind {
		case graph.RelValidates:
			v, err := e.store.GetNode(ctx, graph.KindValidation, edge.From.Key)
			if err != nil {
				continue
			}
			if graph.StringProp(v, graph.PropResult) == "confirmed" {
				validations++
			}
		case graph.RelCites:
			if edge.From.Kind == graph.KindMemory {
				citations[edge.From.Key] = true
			}
		}
	}

	// Unknown creation time decays the recency factor to zero
	ageDays := 365
	if created, ok := graph.CreatedTime(node); ok {
		ageDays = int(e.now().Sub(created).Hours() / 24)
	}
	recency := 10 - float64(ageDays)/30
	if recency < 0 {
		recency = 0
	}

	score := float64(validations)*2 + float64(len(citations)) + recency

	if err := e.store.UpsertNode(ctx, graph.KindMemory, memoryID, map[string]any{graph.PropTrustScore: score}); err != nil {
		return nil, err
	}

	return &TrustReport{
		MemoryID:   memoryID,
		TrustScore: score,
		Factors: TrustFactors{
			Validations:   validations,
			Citations:     len(citations),
			RecencyFactor: math.Round(recency*100) / 100,
			AgeDays:       ageDays,
		},
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// intProp normalizes numeric property values; the Neo4j driver returns
// int64 where the embedded store keeps int.
func intProp(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
