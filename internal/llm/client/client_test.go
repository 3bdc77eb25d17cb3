package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	got   []*schema.Message
	reply *schema.Message
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestChatGenerator_CompleteSendsSystemAndUser(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("hello", nil)}
	gen := &ChatGenerator{ChatModel: fake, System: "be brief", Provider: ProviderOpenAI}

	out, err := gen.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	require.Len(t, fake.got, 2)
	assert.Equal(t, schema.System, fake.got[0].Role)
	assert.Equal(t, schema.User, fake.got[1].Role)
	assert.Equal(t, "hi", fake.got[1].Content)
}

func TestChatGenerator_EmptyReplyIsError(t *testing.T) {
	gen := &ChatGenerator{ChatModel: &fakeChatModel{reply: schema.AssistantMessage("  ", nil)}, Provider: ProviderGemini}
	_, err := gen.Complete(context.Background(), "hi")
	assert.ErrorContains(t, err, "no content")
}

func TestChatGenerator_WrapsModelError(t *testing.T) {
	boom := errors.New("rate limited")
	gen := &ChatGenerator{ChatModel: &fakeChatModel{err: boom}, Provider: ProviderAnthropic}
	_, err := gen.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}

func TestNew_RequiresKeyAndKnownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: ProviderOpenAI})
	assert.ErrorContains(t, err, "api key")

	_, err = New(context.Background(), Options{Provider: "cohere", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"prose around", "Sure! Here you go:\n{\"a\": {\"b\": 2}}\nThanks", `{"a": {"b": 2}}`},
		{"fenced", "```json\n{\"x\":\"y\"}\n```", `{"x":"y"}`},
		{"brace in string", `{"s":"a } b { c"}`, `{"s":"a } b { c"}`},
		{"escaped quote", `{"s":"say \"}\" ok"}`, `{"s":"say \"}\" ok"}`},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSONObject_Malformed(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"a": 1`, "} stray"} {
		_, err := ExtractJSONObject(in)
		assert.ErrorIs(t, err, ErrMalformedOutput, in)
	}
}

func TestDecodeJSON_InvalidBodyIsMalformed(t *testing.T) {
	_, err := DecodeJSON[Digest](`{"subject": 12,}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestDocWriter_Rewrite(t *testing.T) {
	var prompt string
	w := NewDocWriter(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "```json\n{\"updatedContent\":\"# API\\nnew\",\"changeRationale\":\"added endpoint\"}\n```", nil
	}))

	out, err := w.Rewrite(context.Background(), DocRewriteRequest{
		Path:      "app/docs/api/page.md",
		Existing:  "# API\nold",
		Summary:   "Adds export endpoint",
		Category:  "feature",
		Reference: "PR #12",
	})
	require.NoError(t, err)
	assert.Equal(t, "# API\nnew", out.Content)
	assert.Equal(t, "added endpoint", out.Rationale)
	assert.Contains(t, prompt, "app/docs/api/page.md")
	assert.Contains(t, prompt, "# API\nold")
	assert.Contains(t, prompt, "PR #12")
}

func TestDocWriter_RewriteMissingPagePrompt(t *testing.T) {
	var prompt string
	w := NewDocWriter(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"updatedContent":"# New","changeRationale":"created"}`, nil
	}))
	_, err := w.Rewrite(context.Background(), DocRewriteRequest{Path: "app/docs/new/page.md", Missing: true})
	require.NoError(t, err)
	assert.Contains(t, prompt, "does not exist yet")
	assert.NotContains(t, prompt, "Current content")
}

func TestDocWriter_EmptyContentIsMalformed(t *testing.T) {
	w := NewDocWriter(generatorFunc(func(context.Context, string) (string, error) {
		return `{"updatedContent":"","changeRationale":"nothing"}`, nil
	}))
	_, err := w.Rewrite(context.Background(), DocRewriteRequest{Path: "p.md"})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestSummarizer_ReviewPromptTruncates(t *testing.T) {
	var prompt string
	s := NewSummarizer(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"summary":"Adds SSO","suggestedDocPages":["app/docs/auth/page.md"],"category":"feature"}`, nil
	}))
	files := make([]string, 25)
	for i := range files {
		files[i] = "f" + strings.Repeat("x", i) + ".go"
	}
	out, err := s.SummarizeReview(context.Background(), ReviewSummaryRequest{
		Repository: "acme/api",
		Number:     7,
		Title:      "SSO",
		Files:      files,
		Diff:       strings.Repeat("d", 4000),
		KnownPages: []string{"app/docs/auth/page.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Adds SSO", out.Summary)
	assert.Equal(t, []string{"app/docs/auth/page.md"}, out.SuggestedDocPages)
	assert.Contains(t, prompt, "... and 5 more files")
	assert.Contains(t, prompt, "(truncated)")
	assert.Contains(t, prompt, "Description: N/A")
	assert.Contains(t, prompt, "- app/docs/auth/page.md")
}

func TestSummarizer_TicketEmptySummaryIsMalformed(t *testing.T) {
	s := NewSummarizer(generatorFunc(func(context.Context, string) (string, error) {
		return `{"summary":" ","category":"fix"}`, nil
	}))
	_, err := s.SummarizeTicket(context.Background(), TicketSummaryRequest{Identifier: "ENG-1", Title: "t"})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestDigestWriter_Write(t *testing.T) {
	var prompt string
	w := NewDigestWriter(generatorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"subject":"This week","emailCopy":"Hello"}`, nil
	}))
	out, err := w.Write(context.Background(), DigestRequest{
		WeekStart: "Jan 6, 2025",
		WeekEnd:   "Jan 12, 2025",
		Sections: []DigestSection{
			{Name: "Features", Items: []DigestItem{{Title: "Export", Summary: "CSV export", DocLinks: []string{"https://docs/x"}}}},
			{Name: "Fixes"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Digest{Subject: "This week", EmailCopy: "Hello"}, out)
	assert.Contains(t, prompt, "## Features")
	assert.NotContains(t, prompt, "## Fixes")
	assert.Contains(t, prompt, "Docs: https://docs/x")
}
