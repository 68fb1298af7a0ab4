package stream_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gwstream/pkg/stream"
)

var _ = Describe("Decode", func() {
	It("recognizes the terminator sentinel", func() {
		frame, err := stream.Decode("[DONE]")
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Done).To(BeTrue())
		Expect(frame.Chunk).To(BeNil())
	})

	It("tolerates whitespace around the sentinel", func() {
		frame, err := stream.Decode(" [DONE] ")
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Done).To(BeTrue())
	})

	It("decodes a chunk", func() {
		frame, err := stream.Decode(`{"id":"c1","model":"m","choices":[{"index":0,"delta":{"content":"hi"}}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Done).To(BeFalse())
		Expect(frame.Chunk.ID).To(Equal("c1"))
		Expect(frame.Chunk.Choices).To(HaveLen(1))
		text, ok := frame.Chunk.Choices[0].Delta.ContentText()
		Expect(ok).To(BeTrue())
		Expect(text).To(Equal("hi"))
	})

	Context("when the payload is malformed", func() {
		decodeErr := func(payload string) *stream.DecodeError {
			_, err := stream.Decode(payload)
			Expect(err).To(HaveOccurred())
			var derr *stream.DecodeError
			Expect(errors.As(err, &derr)).To(BeTrue())
			return derr
		}

		It("keeps the raw payload", func() {
			derr := decodeErr(`{"choices":[`)
			Expect(derr.Raw).To(Equal(`{"choices":[`))
			Expect(derr.Unwrap()).To(HaveOccurred())
		})

		It("falls back to a generic message", func() {
			derr := decodeErr(`not json at all`)
			Expect(derr.Message).To(HavePrefix("malformed stream frame"))
			Expect(derr.Error()).To(ContainSubstring("decoding stream frame"))
		})

		It("extracts a top-level message from truncated JSON", func() {
			derr := decodeErr(`{"message":"upstream overloaded","error":{"message":"inner"`)
			Expect(derr.Message).To(Equal("upstream overloaded"))
		})

		It("prefers the top-level message even when a nested one comes first", func() {
			derr := decodeErr(`{"error":{"message":"inner"},"message":"outer","choices":[`)
			Expect(derr.Message).To(Equal("outer"))
		})

		It("falls back to a nested message", func() {
			derr := decodeErr(`{"error":{"message":"rate limited","code":429},"choices":`)
			Expect(derr.Message).To(Equal("rate limited"))
		})

		It("ignores braces inside strings when judging depth", func() {
			derr := decodeErr(`{"note":"{{{","message":"top"`)
			Expect(derr.Message).To(Equal("top"))
		})

		It("unescapes the extracted message", func() {
			derr := decodeErr(`{"message":"say \"hi\"",`)
			Expect(derr.Message).To(Equal(`say "hi"`))
		})

		It("reads the message from valid JSON of the wrong shape", func() {
			derr := decodeErr(`{"choices":"oops","error":{"message":"bad shape"}}`)
			Expect(derr.Message).To(Equal("bad shape"))
		})

		It("reads a string error from valid JSON of the wrong shape", func() {
			derr := decodeErr(`{"choices":7,"error":"kaput"}`)
			Expect(derr.Message).To(Equal("kaput"))
		})
	})
})
