package errorsx_test

import (
	"errors"

	. "github.com/james-lawrence/rbcbench/internal/x/errorsx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errorsx", func() {
	It("Compact should return the first error", func() {
		first := errors.New("first")
		Expect(Compact(nil, first, errors.New("second"))).To(Equal(first))
		Expect(Compact(nil, nil)).To(Succeed())
	})

	It("UserFriendly should be detectable", func() {
		Expect(UserFriendly(nil)).To(BeNil())
		Expect(IsUserFriendly(UserFriendly(errors.New("boom")))).To(BeTrue())
		Expect(IsUserFriendly(errors.New("boom"))).To(BeFalse())
	})
})
