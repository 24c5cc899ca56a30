package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	peer := &fakePeer{}

	p := r.Register(peer)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Player_"+p.ID[:6], p.Name)

	got, ok := r.Lookup(p.ID)
	require.True(t, ok)
	require.Same(t, p, got)

	got, ok = r.ByPeer(peer)
	require.True(t, ok)
	require.Same(t, p, got)
}

func TestReattachReleasesOldPeer(t *testing.T) {
	r := NewRegistry()
	oldPeer := &fakePeer{}
	p := r.Register(oldPeer)

	newPeer := &fakePeer{token: p.ID}
	r.Reattach(p, newPeer)

	require.True(t, oldPeer.closed)
	require.Same(t, newPeer, p.Peer)

	// A conexão antiga não resolve mais para o jogador.
	_, ok := r.ByPeer(oldPeer)
	require.False(t, ok)

	got, ok := r.ByPeer(newPeer)
	require.True(t, ok)
	require.Same(t, p, got)
}

func TestRetire(t *testing.T) {
	r := NewRegistry()
	peer := &fakePeer{}
	p := r.Register(peer)

	r.Retire(p)

	_, ok := r.Lookup(p.ID)
	require.False(t, ok)
	_, ok = r.ByPeer(peer)
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}
