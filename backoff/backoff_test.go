package backoff_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/james-lawrence/rbcbench/backoff"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testBackoff(attempts int, s Strategy, expected ...time.Duration) {
	for i := 0; i < attempts; i++ {
		Expect(s.Backoff(i)).To(Equal(expected[i]))
	}
}

func expectedDurationTest(attempt int, s Strategy, expected time.Duration) {
	Expect(s.Backoff(attempt)).To(Equal(expected))
}

var _ = Describe("Backoff", func() {
	DescribeTable("Exponential",
		testBackoff,
		Entry("should double each time", 5, Exponential(1*time.Second), 1*time.Second, 2*time.Second, 4*time.Second, 8*time.Second, 16*time.Second),
		Entry("should respect the maximum", 4, New(Exponential(time.Second), Maximum(3*time.Second)), 1*time.Second, 2*time.Second, 3*time.Second, 3*time.Second),
	)
	DescribeTable("Constant",
		testBackoff,
		Entry("should remain constant", 5, Constant(1*time.Second), 1*time.Second, 1*time.Second, 1*time.Second, 1*time.Second, 1*time.Second),
	)

	DescribeTable("Exponential Backoff",
		expectedDurationTest,
		Entry("attempt 0", 0, Exponential(1*time.Second), time.Duration(1*time.Second)),
		Entry("attempt 3", 3, Exponential(1*time.Second), time.Duration(8*time.Second)),
		Entry("with scaling - attempt 0", 0, Exponential(500*time.Millisecond), time.Duration(500*time.Millisecond)),
		Entry("with scaling - attempt 3", 3, Exponential(500*time.Millisecond), time.Duration(4*time.Second)),
		Entry("max attempt value", math.MaxInt64, Exponential(1*time.Second), time.Duration(math.MaxInt64)),
	)

	It("jitter stays within the multiplier", func() {
		s := New(Constant(time.Second), Jitter(0.5))
		for i := 0; i < 10; i++ {
			Expect(s.Backoff(i)).To(BeNumerically(">=", time.Second))
			Expect(s.Backoff(i)).To(BeNumerically("<", 1500*time.Millisecond))
		}
	})

	It("retry stops on success", func() {
		calls := 0
		err := Retry(context.Background(), Constant(time.Millisecond), 5, func(attempt int) error {
			calls++
			if attempt < 2 {
				return errors.New("boom")
			}
			return nil
		})
		Expect(err).To(Succeed())
		Expect(calls).To(Equal(3))
	})

	It("retry returns the last error once exhausted", func() {
		calls := 0
		err := Retry(context.Background(), Constant(time.Millisecond), 3, func(attempt int) error {
			calls++
			return errors.New("boom")
		})
		Expect(err).To(MatchError("boom"))
		Expect(calls).To(Equal(3))
	})

	It("retry respects context cancellation", func() {
		ctx, done := context.WithCancel(context.Background())
		done()
		err := Retry(ctx, Constant(time.Hour), 3, func(attempt int) error {
			return errors.New("boom")
		})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
