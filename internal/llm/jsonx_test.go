package llm

import "testing"

type scenePayload struct {
	Scenes []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Score float64 `json:"score"`
	} `json:"scenes"`
}

func TestDecodeJSONDirect(t *testing.T) {
	var out scenePayload
	err := DecodeJSON(`{"scenes":[{"start":1,"end":5,"score":80}]}`, &out)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(out.Scenes) != 1 || out.Scenes[0].Score != 80 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestDecodeJSONFenced(t *testing.T) {
	content := "Here is the result:\n```json\n{\"scenes\":[{\"start\":2,\"end\":9,\"score\":70}]}\n```\nHope that helps."
	var out scenePayload
	if err := DecodeJSON(content, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(out.Scenes) != 1 || out.Scenes[0].Start != 2 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestDecodeJSONBalancedSpanInProse(t *testing.T) {
	content := `The best scenes are {"scenes":[{"start":0,"end":30,"score":91}]} based on the transcript.`
	var out scenePayload
	if err := DecodeJSON(content, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(out.Scenes) != 1 || out.Scenes[0].End != 30 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestDecodeJSONBracesInsideStrings(t *testing.T) {
	content := `Sure: {"scenes":[{"start":1,"end":2,"score":50}],"note":"watch for { and } in text"} done`
	var out map[string]any
	if err := DecodeJSON(content, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out["note"] != "watch for { and } in text" {
		t.Fatalf("string with braces mangled: %v", out["note"])
	}
}

func TestDecodeJSONArrayPayload(t *testing.T) {
	var out []float64
	if err := DecodeJSON("```\n[1, 2, 3]\n```", &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(out) != 3 || out[2] != 3 {
		t.Fatalf("unexpected array: %v", out)
	}
}

func TestDecodeJSONEmpty(t *testing.T) {
	var out map[string]any
	if err := DecodeJSON("   ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if err := DecodeJSON("no json here at all", &out); err == nil {
		t.Fatal("expected error for prose-only payload")
	}
}

func TestFirstBalancedSpanEscapedQuotes(t *testing.T) {
	span := firstBalancedSpan(`x {"a":"he said \"{\" loudly"} y`)
	if span != `{"a":"he said \"{\" loudly"}` {
		t.Fatalf("unexpected span: %q", span)
	}
}
