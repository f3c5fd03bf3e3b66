package dgram

// Code is a CoAP-style request or response code, encoded class<<5|detail.
type Code byte

const (
	CodeEmpty Code = 0x00

	// Request methods.
	CodePOST Code = 0x02 // 0.02

	// Response codes.
	CodeChanged            Code = 0x44 // 2.04
	CodeBadRequest         Code = 0x80 // 4.00
	CodeForbidden          Code = 0x83 // 4.03
	CodeNotFound           Code = 0x84 // 4.04
	CodeServiceUnavailable Code = 0xA3 // 5.03
)

// Class returns the code class (2 success, 4 client error, 5 server error).
func (c Code) Class() int {
	return int(c >> 5)
}

// Detail returns the sub-code within the class.
func (c Code) Detail() int {
	return int(c & 0x1f)
}

func (c Code) String() string {
	switch c {
	case CodeEmpty:
		return "0.00"
	case CodePOST:
		return "0.02 POST"
	case CodeChanged:
		return "2.04 Changed"
	case CodeBadRequest:
		return "4.00 Bad Request"
	case CodeForbidden:
		return "4.03 Forbidden"
	case CodeNotFound:
		return "4.04 Not Found"
	case CodeServiceUnavailable:
		return "5.03 Service Unavailable"
	default:
		return "unknown"
	}
}
