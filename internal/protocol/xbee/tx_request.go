package xbee

import (
	"encoding/binary"
	"fmt"
)

// TxRequest is an outbound transmit request. FrameID is the rotating
// identifier echoed back by the matching TxStatus; id 0 asks the modem not to
// report status at all, so the ledger never allocates it.
type TxRequest struct {
	FrameID byte
	Dest    uint16
	Data    []byte
}

// Frame builds the TypeTxRequest frame: payload = id | dest(u16 BE) |
// options(0) | data.
func (r TxRequest) Frame() Frame {
	payload := make([]byte, 0, 4+len(r.Data))
	payload = append(payload, r.FrameID)
	payload = binary.BigEndian.AppendUint16(payload, r.Dest)
	payload = append(payload, 0) // options
	payload = append(payload, r.Data...)
	return Frame{Type: TypeTxRequest, Payload: payload}
}

// Encode serialises the request straight to wire bytes.
func (r TxRequest) Encode() []byte {
	return r.Frame().Encode()
}

func (r TxRequest) String() string {
	return fmt.Sprintf("TxRequest{id: %d, dest: %02X:%02X, data: %q}",
		r.FrameID, r.Dest>>8, r.Dest&0xFF, r.Data)
}
