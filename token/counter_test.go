package token

import (
	"sync"
	"testing"

	"github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

func newCounter(t testing.TB) Counter {
	t.Helper()
	c, err := NewCounter()
	if err != nil {
		t.Fatalf("NewCounter() error = %v", err)
	}
	return c
}

func TestCountText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty string", text: "", want: 0},
		{name: "single word", text: "Hello", want: 1},
		{name: "simple sentence", text: "Hello, world!", want: 4},
		{name: "pangram", text: "The quick brown fox jumps over the lazy dog.", want: 10},
		{name: "special token", text: "<|endoftext|>", want: 1},
	}

	counter := newCounter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.CountText(tt.text); got != tt.want {
				t.Errorf("CountText(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  oaikit.Message
		want int
	}{
		{
			name: "text body",
			msg:  oaikit.NewTextMessage(types.RoleUser, "Hello, world!"),
			want: 4,
		},
		{
			name: "parts sum their text",
			msg: oaikit.NewPartsMessage(types.RoleUser,
				oaikit.InputText("Hello, world!"),
				oaikit.InputImageURL("https://example.com/a.png", oaikit.ImageDetailHigh),
				oaikit.InputText("Hello"),
			),
			want: 5,
		},
		{
			name: "image only",
			msg:  oaikit.NewPartsMessage(types.RoleUser, oaikit.InputImageURL("https://example.com/a.png", "")),
			want: 0,
		},
		{
			name: "empty parts",
			msg:  oaikit.NewPartsMessage(types.RoleUser),
			want: 0,
		},
		{
			name: "tool call without content",
			msg: oaikit.Message{
				Role:      types.RoleAssistant,
				ToolCalls: []oaikit.ToolCall{oaikit.NewToolCall("call_1", "lookup", map[string]any{"q": "x"})},
			},
			want: 0,
		},
	}

	counter := newCounter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.CountMessage(tt.msg); got != tt.want {
				t.Errorf("CountMessage() = %d, want %d", got, tt.want)
			}
			if got := CountMessage(tt.msg); got != tt.want {
				t.Errorf("package CountMessage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountMessages(t *testing.T) {
	messages := []oaikit.Message{
		oaikit.NewTextMessage(types.RoleSystem, "Hello"),
		oaikit.NewTextMessage(types.RoleUser, "Hello, world!"),
	}
	if got := CountMessages(messages); got != 5 {
		t.Errorf("CountMessages() = %d, want 5", got)
	}
	if got := CountMessages(nil); got != 0 {
		t.Errorf("CountMessages(nil) = %d, want 0", got)
	}
}

func TestCountRequest(t *testing.T) {
	counter := newCounter(t)
	messages := []oaikit.Message{
		oaikit.NewTextMessage(types.RoleSystem, "You are a helpful assistant."),
		oaikit.NewTextMessage(types.RoleUser, "What is the weather in Paris?"),
	}

	if got := counter.CountRequest(nil); got != 0 {
		t.Errorf("CountRequest(nil) = %d, want 0", got)
	}

	plain := counter.CountRequest(&oaikit.ChatCompletionRequest{Messages: messages})
	content := counter.CountMessages(messages)
	// framing: 3 per message plus the role, and 3 for the reply
	if plain < content+2*tokensPerMessage+tokensPerReply {
		t.Errorf("CountRequest() = %d, want at least content %d plus framing", plain, content)
	}

	params := schema.NewObject()
	if err := params.Add("city", schema.TypeString, "City name"); err != nil {
		t.Fatal(err)
	}
	withTools := counter.CountRequest(&oaikit.ChatCompletionRequest{
		Messages: messages,
		Tools:    []oaikit.Tool{oaikit.NewFunctionTool("weather", "Current weather for a city", params, true)},
	})
	if withTools <= plain+tokensPerTool {
		t.Errorf("CountRequest() with tools = %d, want more than %d", withTools, plain+tokensPerTool)
	}

	named := messages[1]
	named.Name = "alice"
	withName := counter.CountRequest(&oaikit.ChatCompletionRequest{Messages: []oaikit.Message{messages[0], named}})
	if withName <= plain {
		t.Errorf("CountRequest() with name = %d, want more than %d", withName, plain)
	}
}

func TestEncodingForModel(t *testing.T) {
	tests := []struct {
		model types.ChatModel
		want  string
	}{
		{types.GPT4o, O200kBase},
		{types.GPT4oMini, O200kBase},
		{types.GPT41Nano, O200kBase},
		{types.GPT5Mini, O200kBase},
		{types.O3, O200kBase},
		{types.GPT4, Cl100kBase},
		{types.GPT4Turbo, Cl100kBase},
		{types.GPT35Turbo, Cl100kBase},
		{"ft:gpt-3.5-turbo:acme::abc123", Cl100kBase},
		{"my-custom-model", O200kBase},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			if got := EncodingForModel(tt.model); got != tt.want {
				t.Errorf("EncodingForModel(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}

	counter, err := ForModel(types.GPT35Turbo)
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if got := counter.CountText("Hello, world!"); got != 4 {
		t.Errorf("cl100k CountText() = %d, want 4", got)
	}

	if _, err := NewCounterWithEncoding("nonexistent_base"); err == nil {
		t.Error("NewCounterWithEncoding() accepted an unknown encoding")
	}
}

func TestApproximateAccuracy(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		actualTokens int
		maxDeviation float64
	}{
		{name: "short greeting", text: "Hello, world!", actualTokens: 4, maxDeviation: 0.30},
		{name: "medium sentence", text: "The quick brown fox jumps over the lazy dog.", actualTokens: 10, maxDeviation: 0.20},
		{
			name:         "longer text",
			text:         "This is a longer piece of text that contains multiple sentences. It should help us test the accuracy of our token counting algorithm.",
			actualTokens: 28,
			maxDeviation: 0.15,
		},
		{name: "code snippet", text: "func main() { fmt.Println(\"Hello, world!\") }", actualTokens: 14, maxDeviation: 0.30},
	}

	counter := Approximate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := counter.CountText(tt.text)
			deviation := float64(abs(got-tt.actualTokens)) / float64(tt.actualTokens)
			if deviation > tt.maxDeviation {
				t.Errorf("CountText(%q) = %d (actual: %d), deviation %.2f%% exceeds max %.2f%%",
					tt.text, got, tt.actualTokens, deviation*100, tt.maxDeviation*100)
			}
		})
	}

	if got := counter.CountText("   "); got != 0 {
		t.Errorf("CountText(whitespace) = %d, want 0", got)
	}
	if got := counter.CountMessage(oaikit.NewPartsMessage(types.RoleUser)); got != 0 {
		t.Errorf("CountMessage(empty parts) = %d, want 0", got)
	}
}

func TestCounterThreadSafety(t *testing.T) {
	counter := Default()
	text := "This is a test message for concurrent counting."
	want := counter.CountText(text)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := counter.CountText(text); got != want {
					t.Errorf("CountText() = %d, want %d", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkCountText(b *testing.B) {
	counter := newCounter(b)
	text := "The quick brown fox jumps over the lazy dog. This is a test sentence."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counter.CountText(text)
	}
}

func BenchmarkCountRequest(b *testing.B) {
	counter := newCounter(b)
	req := &oaikit.ChatCompletionRequest{
		Messages: []oaikit.Message{
			oaikit.NewTextMessage(types.RoleSystem, "You are a helpful assistant."),
			oaikit.NewTextMessage(types.RoleUser, "Hello, how are you?"),
		},
		Tools: []oaikit.Tool{oaikit.NewFunctionTool("weather", "Current weather", nil, false)},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counter.CountRequest(req)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
