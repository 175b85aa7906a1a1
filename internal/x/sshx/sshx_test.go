package sshx_test

import (
	"os"
	"path/filepath"

	. "github.com/james-lawrence/rbcbench/internal/x/sshx"
	"github.com/james-lawrence/rbcbench/internal/x/testingx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sshx", func() {
	It("should load a generated key", func() {
		encoded, err := UnsafeAuto()
		Expect(err).To(Succeed())

		path := filepath.Join(testingx.TempDir(), "id_rsa")
		Expect(os.WriteFile(path, encoded, 0600)).To(Succeed())

		signer, err := Signer(path)
		Expect(err).To(Succeed())
		Expect(signer.PublicKey().Type()).To(Equal("ssh-rsa"))
	})

	It("should fail to load a missing key", func() {
		_, err := Signer(filepath.Join(testingx.TempDir(), "missing"))
		Expect(err).To(MatchError(ContainSubstring(ErrLoadKey)))
	})

	It("should fail to load garbage", func() {
		path := filepath.Join(testingx.TempDir(), "garbage")
		Expect(os.WriteFile(path, []byte("garbage"), 0600)).To(Succeed())
		_, err := Signer(path)
		Expect(err).To(MatchError(ContainSubstring(ErrLoadKey)))
	})
})
