package filesystem_test

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/format/index"
	"github.com/firiho/lit/storage/filesystem"
)

func TestInitLayout(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	head, err := s.Refs.Reference(plumbing.HEAD)
	require.NoError(t, err)
	require.Equal(t, plumbing.SymbolicReference, head.Type())
	require.Equal(t, plumbing.NewBranchReferenceName(filesystem.DefaultBranch), head.Target())

	h, err := s.HeadHash()
	require.NoError(t, err)
	require.True(t, h.IsZero())
}

func TestObjectRoundTrip(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	blob := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("hello\n"))
	hash, err := s.Objects.SetEncodedObject(blob)
	require.NoError(t, err)
	require.True(t, s.Objects.HasEncodedObject(hash))

	got, err := s.Objects.EncodedObject(hash)
	require.NoError(t, err)
	require.Equal(t, plumbing.BlobObject, got.Type())
	content, err := got.Reader()
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(content))
}

func TestResolvePrefixUnique(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	a := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("a"))
	b := plumbing.NewMemoryObject(plumbing.BlobObject, []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	ha, err := s.Objects.SetEncodedObject(a)
	require.NoError(t, err)
	hb, err := s.Objects.SetEncodedObject(b)
	require.NoError(t, err)

	if ha.String()[:2] == hb.String()[:2] {
		t.Skip("both fixture blobs share a shard")
	}

	got, err := s.Objects.ResolvePrefix(ha.String()[:6])
	require.NoError(t, err)
	require.Equal(t, ha, got)
}

func TestReferenceCompareAndSet(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	branch := plumbing.NewBranchReferenceName("main")
	h1 := plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, s.Refs.CompareAndSetReference(plumbing.NewHashReference(branch, h1), plumbing.ZeroHash))

	h2 := plumbing.NewHash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	err = s.Refs.CompareAndSetReference(plumbing.NewHashReference(branch, h2), plumbing.ZeroHash)
	require.Error(t, err)

	require.NoError(t, s.Refs.CompareAndSetReference(plumbing.NewHashReference(branch, h2), h1))

	ref, err := s.Refs.Reference(branch)
	require.NoError(t, err)
	require.Equal(t, h2, ref.Hash())
}

func TestResolveFallsBackToRemoteTracking(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	remote := plumbing.NewRemoteReferenceName("origin", "main")
	h := plumbing.NewHash("cccccccccccccccccccccccccccccccccccccccc")
	require.NoError(t, s.Refs.SetReference(plumbing.NewHashReference(remote, h)))

	resolved, err := s.Refs.Resolve("origin/main")
	require.NoError(t, err)
	require.Equal(t, h, resolved)
}

func TestIndexRoundTrip(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	idx, err := s.Index.ReadIndex()
	require.NoError(t, err)
	idx.Upsert(&index.Entry{Name: "a.txt", Mode: 0o100644, Hash: plumbing.NewHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")})
	require.NoError(t, s.Index.WriteIndex(idx))

	reloaded, err := s.Index.ReadIndex()
	require.NoError(t, err)
	require.Len(t, reloaded.Entries, 1)
	require.Equal(t, "a.txt", reloaded.Entries[0].Name)
}

func TestConfigRoundTrip(t *testing.T) {
	fs := memfs.New()
	s, err := filesystem.Init(fs, false)
	require.NoError(t, err)

	cfg, err := s.Config.ReadConfig()
	require.NoError(t, err)
	require.Equal(t, "false", cfg.Section("core").Option("bare"))

	cfg.Section("user").SetOption("name", "Jane Doe")
	require.NoError(t, s.Config.WriteConfig(cfg))

	reloaded, err := s.Config.ReadConfig()
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", reloaded.Section("user").Option("name"))
}
