package xbee

// DeliveryStatus is the result byte carried by a TxStatus frame.
type DeliveryStatus byte

// Common delivery outcomes. The full table lives in deliveryStatusText; codes
// outside it fold to DeliveryUnknown.
const (
	DeliverySuccess DeliveryStatus = 0x00
	DeliveryNoAck   DeliveryStatus = 0x01
	DeliveryUnknown DeliveryStatus = 0xFF
)

var deliveryStatusText = map[DeliveryStatus]string{
	0x00: "Success",
	0x01: "No acknowledgement received",
	0x02: "CCA failure",
	0x03: "Transmission purged, it was attempted before stack was up",
	0x04: "Transceiver was unable to complete the transmission",
	0x15: "Invalid destination endpoint",
	0x18: "No buffers",
	0x21: "Network ACK Failure",
	0x22: "Not joined to network",
	0x23: "Self-addressed",
	0x24: "Address not found",
	0x25: "Route not found",
	0x26: "Broadcast source failed to hear a neighbor relay the message",
	0x2B: "Invalid binding table index",
	0x2C: "Invalid endpoint",
	0x2D: "Attempted broadcast with APS transmission",
	0x2E: "Attempted broadcast with APS transmission, but EE=0",
	0x31: "A software error occurred",
	0x32: "Resource error lack of free buffers, timers, etc",
	0x34: "No Secure session connection",
	0x35: "Encryption failure",
	0x74: "Data payload too large",
	0x75: "Indirect message unrequested",
	0x76: "Attempt to create a client socket failed",
	0x77: "TCP connection to given IP address and port does not exist. Source port is non-zero, so a new connection is not attempted",
	0x78: "Source port on a UDP transmission does not match a listening port on the transmitting module",
	0x79: "Source port on a TCP transmission does not match a listening port on the transmitting module",
	0x7A: "Destination IPv4 address is invalid",
	0x7B: "Protocol on an IPv4 transmission is invalid",
	0x7C: "Destination interface on a User Data Relay Frame does not exist",
	0x7D: "Destination interface on a User Data Relay Frame exists, but the interface is not accepting data",
	0x7E: "Modem update in progress. Try again after update completion.",
	0x80: "Destination server refused the connection",
	0x81: "The existing connection was lost before the data was sent",
	0x82: "No server",
	0x83: "The existing connection was closed",
	0x84: "The server could not be found",
	0x85: "An unknown error occurred",
	0x86: "TLS Profile on a 0x23 API request does not exist, or one or more certificates is invalid",
	0x87: "Socket not connected",
	0x88: "Socket not bound",
	0xBB: "Key not authorized",

	DeliveryUnknown: "Unknown",
}

// DeliveryStatusOf maps a raw status byte onto the known code table, folding
// unlisted values to DeliveryUnknown.
func DeliveryStatusOf(b byte) DeliveryStatus {
	if _, ok := deliveryStatusText[DeliveryStatus(b)]; ok {
		return DeliveryStatus(b)
	}
	return DeliveryUnknown
}

// Success reports whether the status byte means the frame was delivered.
func (s DeliveryStatus) Success() bool {
	return s == DeliverySuccess
}

func (s DeliveryStatus) String() string {
	if t, ok := deliveryStatusText[s]; ok {
		return t
	}
	return deliveryStatusText[DeliveryUnknown]
}
