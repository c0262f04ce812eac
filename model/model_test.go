package model

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/oakwood-net/routeros-client/proto"
)

func parse(t *testing.T, words ...string) *proto.Sentence {
	t.Helper()
	s, err := proto.ParseSentence(words)
	assert.NoError(t, err)
	return s
}

func TestDecodeInterfaceMTUAuto(t *testing.T) {
	s := parse(t, "!re", ".id=*1", "=name=ether1", "=type=ether", "=mtu=auto", "=actual-mtu=1500",
		"=link-downs=0", "=rx-byte=0", "=tx-byte=0", "=rx-packet=0", "=tx-packet=0",
		"=tx-queue-drop=0", "=fp-rx-byte=0", "=fp-tx-byte=0", "=fp-rx-packet=0", "=fp-tx-packet=0",
		"=running=true", "=disabled=false")

	iface, err := DecodeInterface(s)
	assert.NoError(t, err)
	assert.True(t, iface.MTU.Auto)
	assert.Equal(t, "ether1", iface.Name)
}

func TestDecodeInterfaceMTUNumeric(t *testing.T) {
	s := parse(t, "!re", ".id=*1", "=name=ether2", "=type=ether", "=mtu=1480", "=actual-mtu=1480",
		"=link-downs=0", "=rx-byte=0", "=tx-byte=0", "=rx-packet=0", "=tx-packet=0",
		"=tx-queue-drop=0", "=fp-rx-byte=0", "=fp-tx-byte=0", "=fp-rx-packet=0", "=fp-tx-packet=0",
		"=running=false", "=disabled=false")

	iface, err := DecodeInterface(s)
	assert.NoError(t, err)
	assert.False(t, iface.MTU.Auto)
	assert.Equal(t, uint16(1480), iface.MTU.Value)
}

func TestDecodeActiveUserDead(t *testing.T) {
	s := parse(t, "!re", ".id=*3", ".dead=true")
	u, err := DecodeActiveUser(s)
	assert.NoError(t, err)
	assert.True(t, u.IsDead)
	assert.Equal(t, "*3", u.ID)
}

func TestDecodeActiveUserLive(t *testing.T) {
	s := parse(t, "!re", ".id=*3", "=when=jan/02/2026 10:00:00", "=name=admin",
		"=address=10.0.0.5", "=via=web", "=group=full", "=radius=false")
	u, err := DecodeActiveUser(s)
	assert.NoError(t, err)
	assert.False(t, u.IsDead)
	assert.Equal(t, "admin", u.Name)
	assert.False(t, u.Radius)
}

func TestDecodeActiveUserLiveMissingField(t *testing.T) {
	s := parse(t, "!re", ".id=*3", "=when=jan/02/2026 10:00:00", "=name=admin")
	_, err := DecodeActiveUser(s)
	assert.Error(t, err)
}

func TestDecodeSystemResources(t *testing.T) {
	s := parse(t, "!re", "=uptime=1w2d", "=version=7.15", "=build-time=Jan/01/2026 00:00:00",
		"=factory-software=7.0", "=free-memory=123456", "=total-memory=268435456",
		"=cpu=ARM", "=cpu-count=1", "=cpu-load=3", "=free-hdd-space=1000",
		"=total-hdd-space=16000000", "=architecture-name=arm", "=board-name=hAP",
		"=platform=MikroTik")
	r, err := DecodeSystemResources(s)
	assert.NoError(t, err)
	assert.Equal(t, "7.15", r.Version)
	assert.Equal(t, uint8(1), r.CPUCount)
}
