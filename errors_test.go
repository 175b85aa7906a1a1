package rbcbench_test

import (
	"github.com/pkg/errors"

	. "github.com/james-lawrence/rbcbench"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ErrorKind", func() {
	It("should find the kind through wrapped errors", func() {
		err := errors.Wrap(Configuration(errors.New("boom")), "phase failed")
		Expect(KindOf(err)).To(Equal(ErrKindConfiguration))
		Expect(err.Error()).To(Equal("phase failed: boom"))
	})

	It("should classify selection exhaustion", func() {
		Expect(KindOf(ErrSelectionExhausted)).To(Equal(ErrKindSelectionExhausted))
		Expect(ErrKindSelectionExhausted.String()).To(Equal("selection exhausted"))
	})

	It("should default to unknown", func() {
		Expect(KindOf(errors.New("boom"))).To(Equal(ErrKindUnknown))
		Expect(KindOf(nil)).To(Equal(ErrKindUnknown))
		Expect(Configuration(nil)).To(BeNil())
	})
})
