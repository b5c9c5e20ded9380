package fingerprint_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/fingerprint"
)

var _ = Describe("Of", func() {
	It("produces a 64 character hex digest", func() {
		fp, err := fingerprint.Of(map[string]any{"epochs": 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(fp).To(HaveLen(64))
		Expect(fp).To(MatchRegexp("^[0-9a-f]+$"))
	})

	It("is independent of map insertion order", func() {
		a := map[string]any{}
		a["x"] = 1
		a["y"] = "two"
		b := map[string]any{}
		b["y"] = "two"
		b["x"] = 1

		Expect(fingerprint.MustOf(a)).To(Equal(fingerprint.MustOf(b)))
	})

	It("differs for different content", func() {
		Expect(fingerprint.MustOf([]string{"utter_greet"})).NotTo(Equal(fingerprint.MustOf([]string{"utter_bye"})))
	})

	It("fails for values JSON cannot encode", func() {
		_, err := fingerprint.Of(map[string]any{"fn": func() {}})
		Expect(err).To(HaveOccurred())
		Expect(func() { fingerprint.MustOf(make(chan int)) }).To(Panic())
	})
})

var _ = Describe("Normalize", func() {
	It("converts YAML-decoded values to their JSON forms", func() {
		out, err := fingerprint.Normalize(map[string]any{
			"epochs": 5,
			"sizes":  []int{256, 128},
			"nested": map[string]any{"rate": float32(0.5)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out["epochs"]).To(Equal(json.Number("5")))
		Expect(out["sizes"]).To(Equal([]any{json.Number("256"), json.Number("128")}))
		Expect(out["nested"]).To(Equal(map[string]any{"rate": 0.5}))
	})

	It("keeps integers above 2^53 exact", func() {
		a, err := fingerprint.Normalize(map[string]any{"random_seed": int64(9007199254740993)})
		Expect(err).NotTo(HaveOccurred())
		b, err := fingerprint.Normalize(map[string]any{"random_seed": int64(9007199254740992)})
		Expect(err).NotTo(HaveOccurred())

		Expect(a["random_seed"]).To(Equal(json.Number("9007199254740993")))
		Expect(a).NotTo(Equal(b))
		Expect(fingerprint.MustOf(a)).NotTo(Equal(fingerprint.MustOf(b)))
	})

	It("keeps unsigned integers beyond int64 exact", func() {
		out, err := fingerprint.Normalize(map[string]any{"seed": uint64(18446744073709551615)})
		Expect(err).NotTo(HaveOccurred())
		Expect(out["seed"]).To(Equal(json.Number("18446744073709551615")))
	})

	It("treats integral floats as integers", func() {
		a, err := fingerprint.Normalize(map[string]any{"epochs": 5.0})
		Expect(err).NotTo(HaveOccurred())
		b, err := fingerprint.Normalize(map[string]any{"epochs": 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("returns an empty map for nil", func() {
		out, err := fingerprint.Normalize(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
		Expect(out).NotTo(BeNil())
	})
})

var _ = Describe("Decode", func() {
	It("decodes numbers as json.Number", func() {
		var out map[string]any
		Expect(fingerprint.Decode([]byte(`{"random_seed": 9007199254740993}`), &out)).To(Succeed())
		Expect(out["random_seed"]).To(Equal(json.Number("9007199254740993")))
	})

	It("rejects malformed input", func() {
		var out map[string]any
		Expect(fingerprint.Decode([]byte(`{`), &out)).NotTo(Succeed())
	})
})
