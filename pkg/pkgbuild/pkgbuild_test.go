package pkgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePKGBUILD = `# Maintainer: Someone <someone@example.com>
pkgname=spotify
pkgver=1.2.31
pkgrel=2
pkgdesc="A proprietary music streaming service"
arch=('x86_64')
depends=('alsa-lib>=1.0.14' 'gtk3')
source=("https://example.com/spotify-$pkgver.deb")

package() {
  local ignored=1
  install -Dm644 foo bar
}
`

func TestNamespace(t *testing.T) {
	ns := Namespace(samplePKGBUILD)

	assert.Equal(t, "spotify", ns["pkgname"])
	assert.Equal(t, "1.2.31", ns["pkgver"])
	assert.Equal(t, "2", ns["pkgrel"])
	assert.Equal(t, "A proprietary music streaming service", ns["pkgdesc"])
	assert.Equal(t, "('alsa-lib>=1.0.14' 'gtk3')", ns["depends"])

	// assignments inside function bodies are not top-level variables
	assert.NotContains(t, ns, "local ignored")
}

func TestNamespaceMultilineArray(t *testing.T) {
	ns := Namespace("sha256sums=('abc'\n  'def')\npkgver=1\n")
	assert.Contains(t, ns["sha256sums"], "abc")
	assert.Contains(t, ns["sha256sums"], "def")
	assert.Equal(t, "1", ns["pkgver"])
}

func TestIsVCS(t *testing.T) {
	assert.True(t, IsVCS("neovim-git"))
	assert.True(t, IsVCS("mesa-svn"))
	assert.False(t, IsVCS("neovim"))
	assert.False(t, IsVCS("git"))
	assert.False(t, IsVCS("magit"))
}
