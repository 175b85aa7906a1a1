package archive_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/james-lawrence/rbcbench/archive"
	"github.com/james-lawrence/rbcbench/internal/x/testingx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func keys() string {
	root := testingx.TempDir()
	dir := filepath.Join(root, "tkeys")
	Expect(os.MkdirAll(filepath.Join(dir, "sec"), 0755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "sec", "sec0_0.pem"), []byte("key0"), 0600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "pub"), []byte("pub"), 0600)).To(Succeed())
	return dir
}

var _ = Describe("Archive", func() {
	It("pack should store entries relative to the parent directory", func() {
		buf := bytes.NewBuffer(nil)
		Expect(PackTree(buf, keys())).To(Succeed())

		dst := testingx.TempDir()
		Expect(Unpack(dst, buf)).To(Succeed())
		Expect(filepath.Join(dst, "tkeys", "pub")).To(BeAnExistingFile())
		Expect(filepath.Join(dst, "tkeys", "sec", "sec0_0.pem")).To(BeAnExistingFile())
	})

	It("should extract a bundle from disk", func() {
		path := filepath.Join(testingx.TempDir(), "tkeys.tar.gz")
		Expect(Bundle(path, keys())).To(Succeed())

		dst := testingx.TempDir()
		Expect(Extract(path, dst)).To(Succeed())
		Expect(filepath.Join(dst, "tkeys", "pub")).To(BeAnExistingFile())
		Expect(Extract(filepath.Join(dst, "missing.tar.gz"), dst)).ToNot(Succeed())
	})

	It("bundle should recreate the directory", func() {
		src := keys()
		path := filepath.Join(testingx.TempDir(), "tkeys.tar.gz")
		Expect(Bundle(path, src)).To(Succeed())

		f, err := os.Open(path)
		Expect(err).To(Succeed())
		defer f.Close()

		dst := testingx.TempDir()
		Expect(Unpack(dst, f)).To(Succeed())
		content, err := os.ReadFile(filepath.Join(dst, "tkeys", "sec", "sec0_0.pem"))
		Expect(err).To(Succeed())
		Expect(string(content)).To(Equal("key0"))
	})

	It("should fail to pack missing directories", func() {
		Expect(PackTree(bytes.NewBuffer(nil), filepath.Join(testingx.TempDir(), "missing"))).ToNot(Succeed())
	})
})
