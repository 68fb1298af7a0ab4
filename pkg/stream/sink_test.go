package stream_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/stream"
)

var _ = Describe("Sinks", func() {
	Describe("Handlers", func() {
		It("invokes only the subscribed callbacks", func() {
			var content []string
			var finished int
			h := &stream.Handlers{
				OnContent: func(s string) { content = append(content, s) },
				OnFinish:  func(stream.FinishEvent) { finished++ },
			}

			body := contentFrame("a") + contentFrame("b") + finishFrame("stop") + doneFrame
			_, err := stream.NewSession(h).Run(context.Background(), strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal([]string{"a", "b"}))
			Expect(finished).To(Equal(1))
		})

		It("dispatches every channel", func() {
			var got []stream.Kind
			note := func(k stream.Kind) { got = append(got, k) }
			h := &stream.Handlers{
				OnOpen:           func(stream.OpenEvent) { note(stream.KindOpen) },
				OnChunk:          func(*llm.StreamChunk) { note(stream.KindChunk) },
				OnContent:        func(string) { note(stream.KindContent) },
				OnReasoning:      func(string) { note(stream.KindReasoning) },
				OnLocalToolCall:  func(llm.ToolCall) { note(stream.KindLocalToolCall) },
				OnRemoteToolCall: func(llm.ToolCall) { note(stream.KindRemoteToolCall) },
				OnUsage:          func(llm.Usage) { note(stream.KindUsage) },
				OnFinish:         func(stream.FinishEvent) { note(stream.KindFinish) },
				OnError:          func(stream.ErrorEvent) { note(stream.KindError) },
			}
			for _, e := range []stream.Event{
				stream.OpenEvent{},
				stream.ChunkEvent{},
				stream.ContentEvent{},
				stream.ReasoningEvent{},
				stream.LocalToolCallEvent{},
				stream.RemoteToolCallEvent{},
				stream.UsageEvent{},
				stream.FinishEvent{},
				stream.ErrorEvent{},
			} {
				h.Handle(e)
			}
			Expect(got).To(Equal(stream.Kinds))
		})

		It("tolerates an empty table", func() {
			h := &stream.Handlers{}
			Expect(func() { h.Handle(stream.ContentEvent{Text: "x"}) }).NotTo(Panic())
		})
	})

	Describe("MultiSink", func() {
		It("fans out in order and skips nil sinks", func() {
			var order []string
			a := stream.SinkFunc(func(stream.Event) { order = append(order, "a") })
			b := stream.SinkFunc(func(stream.Event) { order = append(order, "b") })

			stream.MultiSink(a, nil, b).Handle(stream.OpenEvent{})
			Expect(order).To(Equal([]string{"a", "b"}))
		})
	})

	Describe("ErrorEvent", func() {
		It("marks only decode and embedded errors as recoverable", func() {
			Expect(stream.ErrorEvent{ErrorKind: stream.ErrorKindDecode}.Terminal()).To(BeFalse())
			Expect(stream.ErrorEvent{ErrorKind: stream.ErrorKindEmbedded}.Terminal()).To(BeFalse())
			Expect(stream.ErrorEvent{ErrorKind: stream.ErrorKindTransport}.Terminal()).To(BeTrue())
			Expect(stream.ErrorEvent{ErrorKind: stream.ErrorKindCanceled}.Terminal()).To(BeTrue())
			Expect(stream.ErrorEvent{ErrorKind: stream.ErrorKindStatus}.Terminal()).To(BeTrue())
		})
	})
})
