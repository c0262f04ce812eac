package model

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/oakwood-net/routeros-client/proto"
)

// InterfaceMTU is the mtu field of an Interface reply, which the router
// reports either as the literal "auto" or as a numeric byte count.
type InterfaceMTU struct {
	Auto  bool
	Value uint16
}

// DecodeRouterOSAttr implements the polymorphic-field hook proto.Decode
// looks for, so InterfaceMTU can own its own auto/numeric conversion rather
// than being force-fit into a single scalar kind.
func (m *InterfaceMTU) DecodeRouterOSAttr(value string) error {
	if value == "auto" {
		*m = InterfaceMTU{Auto: true}
		return nil
	}
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return errors.Wrapf(err, "interface mtu %q is neither \"auto\" nor a u16", value)
	}
	*m = InterfaceMTU{Value: uint16(n)}
	return nil
}

// Interface is the reply shape of /interface/print.
type Interface struct {
	ID   string `ros:".id"`
	Name string `ros:"name"`
	Type string `ros:"type"`

	MTU       InterfaceMTU `ros:"mtu"`
	ActualMTU uint16       `ros:"actual-mtu"`

	LastLinkUp *string `ros:"last-link-up"`
	LinkDowns  uint32  `ros:"link-downs"`

	RxByte      uint64  `ros:"rx-byte"`
	TxByte      uint64  `ros:"tx-byte"`
	RxPacket    uint64  `ros:"rx-packet"`
	TxPacket    uint64  `ros:"tx-packet"`
	RxDrop      *uint64 `ros:"rx-drop"`
	TxDrop      *uint64 `ros:"tx-drop"`
	TxQueueDrop uint64  `ros:"tx-queue-drop"`
	RxError     *uint64 `ros:"rx-error"`
	TxError     *uint64 `ros:"tx-error"`

	FpRxByte   uint64 `ros:"fp-rx-byte"`
	FpTxByte   uint64 `ros:"fp-tx-byte"`
	FpRxPacket uint64 `ros:"fp-rx-packet"`
	FpTxPacket uint64 `ros:"fp-tx-packet"`

	Running  bool `ros:"running"`
	Slave    bool `ros:"slave"`
	Disabled bool `ros:"disabled"`
}

// DecodeInterface decodes a single /interface/print reply sentence.
func DecodeInterface(s *proto.Sentence) (*Interface, error) {
	var i Interface
	if err := proto.Decode(s, &i, false); err != nil {
		return nil, err
	}
	return &i, nil
}

// InterfaceChange is the reply shape of /interface/listen, which the router
// reports with only the changed interface's id.
type InterfaceChange struct {
	ID string `ros:".id"`
}

// DecodeInterfaceChange decodes a single /interface/listen reply sentence.
func DecodeInterfaceChange(s *proto.Sentence) (*InterfaceChange, error) {
	var c InterfaceChange
	if err := proto.Decode(s, &c, false); err != nil {
		return nil, err
	}
	return &c, nil
}
