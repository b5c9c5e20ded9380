package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("stamps new events", func() {
		now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.FixedZone("x", 3600))
		event := eventstream.NewValidationEvent("finetuning_validator", now)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeValidationCompleted))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.EmittedAt.Location()).To(Equal(time.UTC))
		Expect(event.EmittedAt.Equal(now)).To(BeTrue())
		Expect(event.Resource).To(Equal("finetuning_validator"))
	})

	It("gives every event a distinct id", func() {
		a := eventstream.NewValidationEvent("r", time.Now())
		b := eventstream.NewValidationEvent("r", time.Now())
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("marshals a failed validation with expected top-level keys", func() {
		event := eventstream.NewValidationEvent("r", time.Unix(1735689600, 0))
		event.Finetuning = true
		event.Scope = eventstream.EventScope{Core: true}
		event.Category = "action_removed"
		event.Mismatches = []eventstream.EventMismatch{
			{Category: "action_removed", Subject: "utter_bye"},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("compatible", false))
		Expect(got).To(HaveKeyWithValue("category", "action_removed"))
		Expect(got["scope"]).To(Equal(map[string]any{"core": true, "nlu": false}))
		Expect(got["mismatches"]).To(HaveLen(1))
	})

	It("omits failure fields on success", func() {
		event := eventstream.NewValidationEvent("r", time.Now())
		event.Compatible = true

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).NotTo(ContainSubstring("category"))
		Expect(string(payload)).NotTo(ContainSubstring("mismatches"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil validation event"))
	})
})
