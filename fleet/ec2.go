package fleet

import (
	"context"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/pkg/errors"
)

// EC2 discovers the running testbed instances in each region.
type EC2 struct {
	Regions []string
	Tag     string
	Private bool
}

// Hosts implements Provider.
func (t EC2) Hosts(ctx context.Context) (results Hosts, err error) {
	var (
		sess *session.Session
	)

	if sess, err = session.NewSession(); err != nil {
		return results, errors.WithStack(err)
	}

	for _, region := range t.Regions {
		var (
			addresses []string
		)

		rsess := sess.Copy(&aws.Config{
			Region: aws.String(region),
		})

		if addresses, err = t.region(ctx, ec2.New(rsess)); err != nil {
			return results, errors.Wrapf(err, "failed to describe instances in %s", region)
		}

		log.Println("discovered", len(addresses), "instance(s) in", region)
		results = append(results, Region{Name: region, Addresses: addresses})
	}

	return results, nil
}

func (t EC2) filters() []*ec2.Filter {
	filters := []*ec2.Filter{
		{
			Name:   aws.String("instance-state-name"),
			Values: aws.StringSlice([]string{ec2.InstanceStateNameRunning}),
		},
	}

	if t.Tag != "" {
		filters = append(filters, &ec2.Filter{
			Name:   aws.String("tag:Name"),
			Values: aws.StringSlice([]string{t.Tag}),
		})
	}

	return filters
}

func (t EC2) region(ctx context.Context, c *ec2.EC2) (addresses []string, err error) {
	input := &ec2.DescribeInstancesInput{
		Filters: t.filters(),
	}

	err = c.DescribeInstancesPagesWithContext(ctx, input, func(page *ec2.DescribeInstancesOutput, last bool) bool {
		for _, r := range page.Reservations {
			for _, i := range r.Instances {
				if addr := t.address(i); addr != "" {
					addresses = append(addresses, addr)
				}
			}
		}
		return true
	})

	if err != nil {
		return addresses, errors.WithStack(err)
	}

	// natural order within a region.
	sort.Strings(addresses)

	return addresses, nil
}

func (t EC2) address(i *ec2.Instance) string {
	if t.Private {
		return aws.StringValue(i.PrivateIpAddress)
	}

	return aws.StringValue(i.PublicIpAddress)
}
