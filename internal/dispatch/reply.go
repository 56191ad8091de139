package dispatch

import (
	"strconv"

	"github.com/taggablefs/tagfs/internal/model"
	"github.com/taggablefs/tagfs/internal/wire"
)

// send dials the mailbox bound at path, writes a single final frame, and
// closes the connection. Datagram sockets carry no per-connection state,
// so dialing fresh per reply costs a syscall, not a handshake.
func send(path string, payload []byte) error {
	ep, err := wire.Dial(path)
	if err != nil {
		return err
	}
	defer ep.Close()
	return ep.Send(payload, true)
}

// sendMultiPart dials path once and sends one frame per entry, the last
// one marked final. An empty slice still sends a single empty final
// frame so the caller's ReceiveAll terminates.
func sendMultiPart(path string, entries []string) error {
	ep, err := wire.Dial(path)
	if err != nil {
		return err
	}
	defer ep.Close()
	if len(entries) == 0 {
		return ep.Send(nil, true)
	}
	for i, entry := range entries {
		final := i == len(entries)-1
		if err := ep.Send([]byte(entry), final); err != nil {
			return err
		}
	}
	return nil
}

// replyBridge sends a single final frame to the bridge outbound mailbox.
func (d *Dispatcher) replyBridge(payload string) error {
	return send(d.bridgePath, []byte(payload))
}

// replyOperator sends a single final frame to the operator outbound
// mailbox.
func (d *Dispatcher) replyOperator(payload string) error {
	return send(d.ctlPath, []byte(payload))
}

// replyMultiPartTo sends entries to the given mailbox path.
func (d *Dispatcher) replyMultiPartTo(path string, entries []string) error {
	return sendMultiPart(path, entries)
}

// replyAckOrErrnoTo sends TM_ACK on success, or the decimal POSIX error
// code on an expected-failure error, matching the original dispatch
// loop's mutation-reply convention.
func (d *Dispatcher) replyAckOrErrnoTo(path string, err error) error {
	if err == nil {
		return send(path, []byte(ReplyAck))
	}
	return d.replyErrnoTo(path, err)
}

// replyErrnoTo sends the decimal POSIX error code for err.
func (d *Dispatcher) replyErrnoTo(path string, err error) error {
	if errno, ok := model.Errno(err); ok {
		return send(path, []byte(strconv.Itoa(int(errno))))
	}
	return send(path, []byte(ReplyFail))
}

// replyErrOrValueTo sends value on success, or the decimal POSIX error
// code on failure.
func (d *Dispatcher) replyErrOrValueTo(path, value string, err error) error {
	if err != nil {
		return d.replyErrnoTo(path, err)
	}
	return send(path, []byte(value))
}
