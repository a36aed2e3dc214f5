package xbee

import "fmt"

// TxStatus is the typed view of a TypeTxStatus frame: the modem's delivery
// report for the transmit request that carried the same frame id.
type TxStatus struct {
	FrameID byte
	Status  DeliveryStatus
}

// ParseTxStatus interprets the payload of an 0x89 frame.
func ParseTxStatus(f Frame) (TxStatus, error) {
	if f.Type != TypeTxStatus {
		return TxStatus{}, ErrWrongFrameType
	}
	if len(f.Payload) < 2 {
		return TxStatus{}, ErrShortPayload
	}
	return TxStatus{
		FrameID: f.Payload[0],
		Status:  DeliveryStatusOf(f.Payload[1]),
	}, nil
}

func (s TxStatus) String() string {
	return fmt.Sprintf("TxStatus{id: %d, status: %s}", s.FrameID, s.Status)
}
