package topology_test

import (
	"github.com/james-lawrence/rbcbench/fleet"
	. "github.com/james-lawrence/rbcbench/topology"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Select", func() {
	var (
		threeRegions = fleet.Hosts{
			{Name: "a", Addresses: []string{"a1", "a2"}},
			{Name: "b", Addresses: []string{"b1", "b2"}},
			{Name: "c", Addresses: []string{"c1", "c2"}},
		}
		uneven = fleet.Hosts{
			{Name: "a", Addresses: []string{"a1", "a2", "a3"}},
			{Name: "b", Addresses: []string{"b1"}},
		}
	)

	DescribeTable("collocated",
		func(nodes int, hosts fleet.Hosts, expected []string) {
			t := Select(PolicyCollocate, nodes, 1, hosts)
			Expect(t.Kind()).To(Equal(Collocated))
			Expect(t.Hosts()).To(HaveLen(nodes))
			Expect(t.Hosts()).To(Equal(expected))
			Expect(t.Nodes()).To(Equal(expected))
		},
		Entry("round robin across regions", 4, threeRegions, []string{"a1", "b1", "c1", "a2"}),
		Entry("every host", 6, threeRegions, []string{"a1", "b1", "c1", "a2", "b2", "c2"}),
		Entry("single node", 1, threeRegions, []string{"a1"}),
		Entry("skips exhausted regions", 4, uneven, []string{"a1", "b1", "a2", "a3"}),
	)

	It("collocated insufficient capacity", func() {
		t := Select(PolicyCollocate, 7, 1, threeRegions)
		Expect(t.Kind()).To(Equal(Insufficient))
		Expect(t.Nodes()).To(BeEmpty())
		Expect(t.Machines()).To(BeEmpty())
	})

	It("separated groups of workers+1 hosts per region", func() {
		t := Select(PolicySeparate, 2, 1, threeRegions)
		Expect(t.Kind()).To(Equal(Separated))
		Expect(t.Groups()).To(Equal([][]string{{"a1", "a2"}, {"b1", "b2"}}))
		Expect(t.Nodes()).To(Equal([]string{"a1", "b1"}))
		Expect(t.Machines()).To(Equal([]string{"a1", "a2", "b1", "b2"}))
		for _, g := range t.Groups() {
			Expect(g).To(HaveLen(2))
		}
	})

	It("separated truncates each group", func() {
		t := Select(PolicySeparate, 1, 1, uneven)
		Expect(t.Groups()).To(Equal([][]string{{"a1", "a2"}}))
	})

	DescribeTable("separated insufficient",
		func(nodes, workers int, hosts fleet.Hosts) {
			Expect(Select(PolicySeparate, nodes, workers, hosts).Kind()).To(Equal(Insufficient))
		},
		Entry("not enough regions", 4, 1, threeRegions),
		Entry("not enough hosts per region", 3, 2, threeRegions),
		Entry("second region too small", 2, 1, uneven),
	)

	DescribeTable("invalid arguments",
		func(p Policy, nodes, workers int) {
			Expect(Select(p, nodes, workers, threeRegions).Kind()).To(Equal(Insufficient))
		},
		Entry("zero nodes", PolicyCollocate, 0, 1),
		Entry("negative workers", PolicySeparate, 1, -1),
	)

	It("zero value is insufficient", func() {
		Expect(Topology{}.Kind()).To(Equal(Insufficient))
		Expect(Topology{}.String()).To(Equal("insufficient"))
	})

	It("machines removes duplicates", func() {
		t := NewCollocated("h1", "h2", "h1")
		Expect(t.Machines()).To(Equal([]string{"h1", "h2"}))
		Expect(t.Nodes()).To(Equal([]string{"h1", "h2", "h1"}))
	})

	It("policy from collocate flag", func() {
		Expect(PolicyFromCollocate(true)).To(Equal(PolicyCollocate))
		Expect(PolicyFromCollocate(false)).To(Equal(PolicySeparate))
	})
})
