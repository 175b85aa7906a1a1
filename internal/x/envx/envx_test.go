package envx_test

import (
	"os"

	. "github.com/james-lawrence/rbcbench/internal/x/envx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Envx", func() {
	BeforeEach(func() {
		Expect(os.Setenv("RBCBENCH_TEST_BOOL", "true")).To(Succeed())
		Expect(os.Setenv("RBCBENCH_TEST_STRING", " value ")).To(Succeed())
		Expect(os.Setenv("RBCBENCH_TEST_INT", "42")).To(Succeed())
		Expect(os.Setenv("RBCBENCH_TEST_GARBAGE", "forty two")).To(Succeed())
	})

	AfterEach(func() {
		os.Unsetenv("RBCBENCH_TEST_BOOL")
		os.Unsetenv("RBCBENCH_TEST_STRING")
		os.Unsetenv("RBCBENCH_TEST_INT")
		os.Unsetenv("RBCBENCH_TEST_GARBAGE")
	})

	It("should read the first parsable value", func() {
		Expect(Boolean(false, "RBCBENCH_TEST_MISSING", "RBCBENCH_TEST_BOOL")).To(BeTrue())
		Expect(String("fallback", "RBCBENCH_TEST_STRING")).To(Equal("value"))
		Expect(Int(1, "RBCBENCH_TEST_GARBAGE", "RBCBENCH_TEST_INT")).To(Equal(42))
	})

	It("should fallback when nothing is set", func() {
		Expect(Boolean(true, "RBCBENCH_TEST_MISSING")).To(BeTrue())
		Expect(String("fallback", "RBCBENCH_TEST_MISSING")).To(Equal("fallback"))
		Expect(Int(7, "RBCBENCH_TEST_MISSING")).To(Equal(7))
	})
})
