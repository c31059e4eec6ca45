package analysis

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"loom/internal/config"
	"loom/internal/llm"
	"loom/internal/logging"
	"loom/internal/transcript"
)

const (
	draftType = "linkedin_post"
	judgeType = "post_judge"
)

func writeJudgePairDefs(t *testing.T, dir string) {
	t.Helper()
	writeDefinition(t, dir, &Definition{
		Name:         "summary",
		Prompt:       "Summarize the session.",
		OutputSchema: markerSchema("summary"),
	})
	writeDefinition(t, dir, &Definition{
		Name:         draftType,
		Prompt:       "Write a post from: {{summary}}{{#if judge_feedback}}\nPrior feedback: {{judge_feedback}}{{/if}}",
		OutputSchema: markerSchema(draftType),
		Requires:     []string{"summary"},
	})
	writeDefinition(t, dir, &Definition{
		Name:              judgeType,
		Prompt:            "Judge this post: {{linkedin_post}}",
		OutputSchema:      markerSchema(judgeType),
		Requires:          []string{draftType},
		SkipRawTranscript: true,
	})
}

func testOrchestrator(t *testing.T, dir string, invoker Invoker) *Orchestrator {
	t.Helper()
	resolver := NewResolver(NewRegistry(dir), invoker, "test-model", logging.NewNop())
	return NewOrchestrator(resolver, logging.NewNop())
}

func judgeVerdict(overall float64) map[string]any {
	return map[string]any{
		"overall_score": overall,
		"scores":        map[string]any{"clarity": overall},
		"improvements":  []any{"tighten the hook"},
	}
}

func TestJudgeLoopFreshZeroImprovementRounds(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "the summary"})
	invoker.respond(draftType, map[string]any{"post": "draft zero"})
	invoker.respond(judgeType, judgeVerdict(7))

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, judge, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft == nil || draft.Content["post"] != "draft zero" {
		t.Fatalf("draft = %+v", draft)
	}
	if judge == nil || judge.Failed() {
		t.Fatalf("judge = %+v", judge)
	}

	analysis := doc.Analysis
	if _, ok := analysis["linkedin_post_0"]; !ok {
		t.Error("missing versioned draft linkedin_post_0")
	}
	if _, ok := analysis["post_judge_0"]; !ok {
		t.Error("missing versioned judge post_judge_0")
	}
	if _, ok := analysis["linkedin_post_1"]; ok {
		t.Error("unexpected round 1 with zero improvement rounds")
	}
	if _, ok := analysis[judgeType]; !ok {
		t.Error("plain judge key not written for sibling resolution")
	}

	alias := analysis[draftType]
	if alias.Round == nil || *alias.Round != 0 {
		t.Fatalf("alias round = %v, want 0", alias.Round)
	}
	if alias.History == nil || len(alias.History.Scores) != 1 {
		t.Fatalf("alias history = %+v, want one score", alias.History)
	}
	if alias.History.Scores[0].Overall != 7 {
		t.Errorf("score = %v, want 7", alias.History.Scores[0].Overall)
	}
	if snap := analysis["linkedin_post_0"]; snap.Round != nil || snap.History != nil {
		t.Error("versioned snapshot must not carry round or history markers")
	}
}

func TestJudgeLoopOneImprovementRound(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "the summary"})
	invoker.respond(draftType, map[string]any{"post": "draft zero"})
	invoker.respond(draftType, map[string]any{"post": "draft one"})
	invoker.respond(judgeType, judgeVerdict(6))
	invoker.respond(judgeType, judgeVerdict(9))

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft.Content["post"] != "draft one" {
		t.Fatalf("final draft = %+v, want the improved round", draft.Content)
	}

	analysis := doc.Analysis
	for _, key := range []string{"linkedin_post_0", "linkedin_post_1", "post_judge_0", "post_judge_1"} {
		if _, ok := analysis[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}

	alias := analysis[draftType]
	if alias.Round == nil || *alias.Round != 1 {
		t.Fatalf("alias round = %v, want 1", alias.Round)
	}
	if alias.Content["post"] != analysis["linkedin_post_1"].Content["post"] {
		t.Error("alias content does not mirror the latest draft")
	}
	if len(alias.History.Scores) != 2 {
		t.Fatalf("history = %+v, want two scores", alias.History)
	}
	if alias.History.Scores[0].Overall != 6 || alias.History.Scores[1].Overall != 9 {
		t.Errorf("scores = %+v", alias.History.Scores)
	}

	// The improvement round's prompt carries the serialized prior round.
	var improvementPrompt string
	for _, call := range invoker.calls() {
		if marker, _ := call.Schema["title"].(string); marker == draftType {
			improvementPrompt = call.Prompt
		}
	}
	if !strings.Contains(improvementPrompt, "Prior feedback:") {
		t.Errorf("improvement prompt missing feedback block: %q", improvementPrompt)
	}
	if !strings.Contains(improvementPrompt, "tighten the hook") {
		t.Errorf("improvement prompt missing judge improvements: %q", improvementPrompt)
	}
}

func TestJudgeLoopJudgeFailureKeepsDraft(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "the summary"})
	invoker.respond(draftType, map[string]any{"post": "draft zero"})
	invoker.fail(judgeType, &llm.Failure{Kind: llm.KindServerError, Message: "upstream down"})

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, judge, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft == nil || draft.Content["post"] != "draft zero" {
		t.Fatalf("draft = %+v, want round-zero draft kept", draft)
	}
	if judge == nil || !judge.Failed() {
		t.Fatalf("judge = %+v, want error result", judge)
	}

	analysis := doc.Analysis
	if _, ok := analysis["linkedin_post_0"]; !ok {
		t.Error("missing versioned draft")
	}
	if _, ok := analysis["post_judge_0"]; ok {
		t.Error("failed judge must not be versioned")
	}
	if _, ok := analysis["linkedin_post_1"]; ok {
		t.Error("improvement round attempted after judge failure")
	}
	if alias := analysis[draftType]; alias.Round == nil || *alias.Round != 0 {
		t.Fatalf("alias round = %v, want 0", alias.Round)
	}
}

func TestJudgeLoopLegacyMigration(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond(draftType, map[string]any{"post": "improved"})
	invoker.respond(judgeType, judgeVerdict(8))

	doc := &transcript.Document{
		Transcript: "raw",
		Analysis: map[string]*transcript.Result{
			draftType: {Content: map[string]any{"post": "legacy post"}, Model: "old-model"},
			judgeType: {Content: map[string]any{"overall_score": 5.0}},
		},
	}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft.Content["post"] != "improved" {
		t.Fatalf("draft = %+v, want the new round-1 draft", draft.Content)
	}

	analysis := doc.Analysis
	migrated, ok := analysis["linkedin_post_0"]
	if !ok {
		t.Fatal("legacy alias not migrated to round 0")
	}
	if migrated.Content["post"] != "legacy post" || migrated.Model != "old-model" {
		t.Fatalf("migrated snapshot = %+v, want legacy content preserved", migrated)
	}
	if _, ok := analysis["post_judge_0"]; !ok {
		t.Error("legacy judge result not migrated to round 0")
	}
	if _, ok := analysis["linkedin_post_1"]; !ok {
		t.Error("new work did not begin at round 1")
	}
	if alias := analysis[draftType]; alias.Round == nil || *alias.Round != 1 {
		t.Fatalf("alias round = %v, want 1", alias.Round)
	}
}

func TestJudgeLoopImprovementFailureKeepsLastGoodRound(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "the summary"})
	invoker.respond(draftType, map[string]any{"post": "draft zero"})
	invoker.fail(draftType, &llm.Failure{Kind: llm.KindServerError, Message: "flaky"})
	invoker.respond(judgeType, judgeVerdict(6))

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft.Content["post"] != "draft zero" {
		t.Fatalf("draft = %+v, want the last good round", draft.Content)
	}

	analysis := doc.Analysis
	if _, ok := analysis["linkedin_post_1"]; ok {
		t.Error("failed improvement attempt must leave no versioned entry")
	}
	if alias := analysis[draftType]; alias.Round == nil || *alias.Round != 0 {
		t.Fatalf("alias round = %v, want 0", alias.Round)
	}
}

func TestJudgeLoopResumedImprovementFailureKeepsStoredDraft(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.fail(draftType, &llm.Failure{Kind: llm.KindServerError, Message: "flaky"})

	// A previous invocation already completed round 0.
	round0 := 0
	doc := &transcript.Document{
		Transcript: "raw",
		Analysis: map[string]*transcript.Result{
			"linkedin_post_0": {Content: map[string]any{"post": "draft zero"}},
			"post_judge_0":    {Content: judgeVerdict(6)},
			draftType: {
				Content: map[string]any{"post": "draft zero"},
				Round:   &round0,
			},
		},
	}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	draft, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draft == nil || draft.Content["post"] != "draft zero" {
		t.Fatalf("draft = %+v, want stored round-zero draft", draft)
	}

	analysis := doc.Analysis
	if _, ok := analysis["linkedin_post_1"]; ok {
		t.Error("failed improvement attempt must leave no versioned entry")
	}
	if alias := analysis[draftType]; alias.Round == nil || *alias.Round != 0 {
		t.Fatalf("alias round = %v, want 0", alias.Round)
	}
}

func TestJudgeLoopRoundMonotonicity(t *testing.T) {
	dir := t.TempDir()
	writeJudgePairDefs(t, dir)

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "the summary"})
	invoker.respond(draftType, map[string]any{"post": "v0"})
	invoker.respond(draftType, map[string]any{"post": "v1"})
	invoker.respond(draftType, map[string]any{"post": "v2"})
	invoker.respond(judgeType, judgeVerdict(5))
	invoker.respond(judgeType, judgeVerdict(7))
	invoker.respond(judgeType, judgeVerdict(9))

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	orch := testOrchestrator(t, dir, invoker)

	if _, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 0); err != nil {
		t.Fatal(err)
	}
	if _, _, err := orch.Run(context.Background(), store, doc, draftType, judgeType, 1); err != nil {
		t.Fatal(err)
	}

	rounds := transcript.Rounds(doc.Analysis, draftType)
	if !reflect.DeepEqual(rounds, []int{0, 1, 2}) {
		t.Fatalf("rounds = %v, want contiguous 0..2", rounds)
	}
	alias := doc.Analysis[draftType]
	if alias.Round == nil || *alias.Round != 2 {
		t.Fatalf("alias round = %v, want highest stored round", alias.Round)
	}
}

func TestBuildHistoryDeterministic(t *testing.T) {
	analysis := map[string]*transcript.Result{
		"linkedin_post_0": {Content: map[string]any{"post": "v0"}},
		"linkedin_post_1": {Content: map[string]any{"post": "v1"}},
		"post_judge_0": {Content: map[string]any{
			"overall_score": 6.0,
			"improvements":  []any{"shorter"},
		}},
	}

	first := BuildHistory(analysis, draftType, judgeType)
	second := BuildHistory(analysis, draftType, judgeType)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("history not deterministic over unmodified analysis map")
	}

	if len(first) != 2 {
		t.Fatalf("history = %+v, want both draft rounds", first)
	}
	if first[0].Judge == nil {
		t.Error("round 0 should carry its judge feedback")
	}
	if first[1].Judge != nil {
		t.Error("judge-less round 1 should have no judge section")
	}
}

func TestStartingRoundDerivation(t *testing.T) {
	round0 := 0
	cases := []struct {
		name        string
		analysis    map[string]*transcript.Result
		wantRound   int
		wantMigrate bool
	}{
		{"fresh", map[string]*transcript.Result{}, 0, false},
		{"versioned keys present", map[string]*transcript.Result{
			"linkedin_post_0": {}, "linkedin_post_1": {},
		}, 2, false},
		{"legacy alias", map[string]*transcript.Result{
			draftType: {Content: map[string]any{"post": "old"}},
		}, 1, true},
		{"alias already versioned", map[string]*transcript.Result{
			draftType:         {Round: &round0},
			"linkedin_post_0": {},
		}, 1, false},
		{"edit sub-version ignored", map[string]*transcript.Result{
			"linkedin_post_0_1": {},
		}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			round, migrate := StartingRound(tc.analysis, draftType)
			if round != tc.wantRound || migrate != tc.wantMigrate {
				t.Fatalf("StartingRound = (%d, %v), want (%d, %v)", round, migrate, tc.wantRound, tc.wantMigrate)
			}
		})
	}
}

func TestRunnerStrategyDispatch(t *testing.T) {
	cfg := config.Default()
	maxRounds := 2
	cfg.Analysis.JudgePairs = []config.JudgePair{
		{Draft: draftType, Judge: judgeType, MaxRounds: &maxRounds},
	}

	dir := t.TempDir()
	writeJudgePairDefs(t, dir)
	resolver := NewResolver(NewRegistry(dir), newScriptedInvoker(), "test-model", logging.NewNop())
	runner := NewRunner(&cfg, resolver, logging.NewNop())

	if _, ok := runner.StrategyFor(draftType).(*judgeLoopStrategy); !ok {
		t.Fatal("paired type should route through the judge loop")
	}
	if _, ok := runner.StrategyFor("summary").(*plainStrategy); !ok {
		t.Fatal("unpaired type should run plain resolution")
	}
}

func TestRunnerPlainRunPersists(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{
		Name:         "summary",
		Prompt:       "Summarize.",
		OutputSchema: markerSchema("summary"),
	})

	invoker := newScriptedInvoker()
	invoker.respond("summary", map[string]any{"summary": "done"})

	doc := &transcript.Document{Transcript: "raw"}
	store := newTestStore(t, doc)
	cfg := config.Default()
	resolver := NewResolver(NewRegistry(dir), invoker, "test-model", logging.NewNop())
	runner := NewRunner(&cfg, resolver, logging.NewNop())

	outcome, err := runner.Run(context.Background(), store, doc, "summary")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Result.Content["summary"] != "done" {
		t.Fatalf("outcome = %+v", outcome.Result)
	}

	reloaded, err := store.Load(doc.Path())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	saved := reloaded.Analysis["summary"]
	if saved == nil || saved.Content["summary"] != "done" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.Model != "test-model" {
		t.Errorf("saved model = %q", saved.Model)
	}
}
