// Package controlv1 implements the portal control protocol messages.
//
// Messages use the Protocol Buffers wire format:
//
//	message ControlRequest {
//	  oneof content {
//	    uint32 shutdown = 1;
//	  }
//	}
//
//	message ControlResponse {
//	  oneof content {
//	    uint32 shutdown = 1;
//	  }
//	}
//
// Each message travels in a single UDP datagram.
package controlv1
