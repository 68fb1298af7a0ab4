package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gwstream/pkg/llm"
)

func strPtr(s string) *string { return &s }

var _ = Describe("StreamChunk", func() {
	It("decodes a tool-call fragment chunk", func() {
		payload := `{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1700000000,"model":"gpt-4.1",
			"choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{\"ci"}}]}}]}`

		var chunk llm.StreamChunk
		Expect(json.Unmarshal([]byte(payload), &chunk)).To(Succeed())
		Expect(chunk.Model).To(Equal("gpt-4.1"))
		Expect(chunk.Choices).To(HaveLen(1))

		frag := chunk.Choices[0].Delta.ToolCalls[0]
		Expect(frag.Index).To(Equal(1))
		Expect(frag.ID).To(Equal("call_1"))
		Expect(frag.Function.Name).To(Equal("get_weather"))
		Expect(frag.Function.Arguments).To(Equal(`{"ci`))
		Expect(chunk.Choices[0].FinishReason).To(BeNil())
	})

	It("decodes a finish reason", func() {
		var chunk llm.StreamChunk
		Expect(json.Unmarshal([]byte(`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`), &chunk)).To(Succeed())
		Expect(*chunk.Choices[0].FinishReason).To(Equal(llm.FinishReasonToolCalls))
	})

	It("treats a null finish reason as absent", func() {
		var chunk llm.StreamChunk
		Expect(json.Unmarshal([]byte(`{"choices":[{"index":0,"delta":{"content":"x"},"finish_reason":null}]}`), &chunk)).To(Succeed())
		Expect(chunk.Choices[0].FinishReason).To(BeNil())
	})

	Describe("ChunkError", func() {
		It("accepts the string form", func() {
			var chunk llm.StreamChunk
			Expect(json.Unmarshal([]byte(`{"error":"upstream overloaded"}`), &chunk)).To(Succeed())
			Expect(chunk.Error).NotTo(BeNil())
			Expect(chunk.Error.Message).To(Equal("upstream overloaded"))
		})

		It("accepts the object form", func() {
			var chunk llm.StreamChunk
			Expect(json.Unmarshal([]byte(`{"error":{"message":"rate limited","type":"rate_limit","code":429}}`), &chunk)).To(Succeed())
			Expect(chunk.Error.Message).To(Equal("rate limited"))
			Expect(chunk.Error.Type).To(Equal("rate_limit"))
			Expect(chunk.Error.Error()).To(Equal("rate limited"))
		})

		It("keeps unexpected forms as raw text", func() {
			var chunk llm.StreamChunk
			Expect(json.Unmarshal([]byte(`{"error":42}`), &chunk)).To(Succeed())
			Expect(chunk.Error.Message).To(Equal("42"))
		})

		It("leaves the error nil when absent or null", func() {
			var chunk llm.StreamChunk
			Expect(json.Unmarshal([]byte(`{"error":null,"choices":[]}`), &chunk)).To(Succeed())
			Expect(chunk.Error).To(BeNil())
		})
	})
})

var _ = Describe("StreamDelta", func() {
	Describe("ContentText", func() {
		It("reports empty content as absent", func() {
			d := llm.StreamDelta{Content: strPtr("")}
			_, ok := d.ContentText()
			Expect(ok).To(BeFalse())
		})

		It("returns non-empty content", func() {
			d := llm.StreamDelta{Content: strPtr("hi")}
			text, ok := d.ContentText()
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("hi"))
		})
	})

	Describe("ReasoningText", func() {
		It("reads reasoning_content", func() {
			d := llm.StreamDelta{ReasoningContent: strPtr("thinking")}
			text, ok := d.ReasoningText()
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("thinking"))
		})

		It("reads reasoning", func() {
			d := llm.StreamDelta{Reasoning: strPtr("pondering")}
			text, ok := d.ReasoningText()
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("pondering"))
		})

		It("prefers reasoning when both spellings are present", func() {
			d := llm.StreamDelta{ReasoningContent: strPtr("first"), Reasoning: strPtr("second")}
			text, _ := d.ReasoningText()
			Expect(text).To(Equal("second"))
		})

		It("reports no reasoning when both are empty", func() {
			d := llm.StreamDelta{}
			_, ok := d.ReasoningText()
			Expect(ok).To(BeFalse())
		})
	})
})
