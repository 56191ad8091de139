// Package dispatch implements the Request Dispatcher: a single-threaded
// loop that reads framed requests from one inbound transport endpoint,
// routes them to the Filesystem Model, and replies on the bridge or
// operator outbound endpoint depending on verb namespace.
package dispatch

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/taggablefs/tagfs/internal/model"
	"github.com/taggablefs/tagfs/internal/util"
	"github.com/taggablefs/tagfs/internal/wire"
)

var log = util.GetLogger("Dispatch")

// Dispatcher owns the single-threaded request loop. The bridge and
// operator outbound mailboxes are addressed by path rather than held
// open: the bridge binds its mailbox once at mount time and outlives
// the daemon's own startup ordering, while the operator CLI binds a
// fresh mailbox for each short-lived invocation, so a reply connection
// is dialed just before each send rather than once at construction.
type Dispatcher struct {
	model      *model.Model
	inbound    *wire.Endpoint
	bridgePath string
	ctlPath    string
	tagView    bool

	requests uint64
}

// New constructs a Dispatcher wired to an already-bound inbound endpoint
// and the filesystem paths of the two outbound reply mailboxes.
func New(m *model.Model, inbound *wire.Endpoint, bridgePath, ctlPath string, tagView bool) *Dispatcher {
	return &Dispatcher{model: m, inbound: inbound, bridgePath: bridgePath, ctlPath: ctlPath, tagView: tagView}
}

// Run blocks, servicing requests until a shutdown verb is received or the
// inbound endpoint returns an error.
func (d *Dispatcher) Run() error {
	for {
		frame, err := d.inbound.Receive()
		if err != nil {
			return err
		}

		verb, payload := splitVerb(string(frame.Payload))
		reqID := uuid.NewString()
		entry := log.With().Str("request_id", reqID).Str("verb", verb).Logger()
		entry.Debug().Msg("dispatching request")

		shutdown, err := d.dispatch(verb, payload)
		if err != nil {
			entry.Warn().Err(err).Msg("request handling failed")
		}
		if shutdown {
			entry.Info().Msg("shutdown requested")
			return nil
		}
	}
}

// splitVerb separates "VERB payload" at the first space.
func splitVerb(msg string) (verb, payload string) {
	idx := strings.IndexByte(msg, ' ')
	if idx < 0 {
		return msg, ""
	}
	return msg[:idx], msg[idx+1:]
}

// splitArgs splits a comma-delimited argument list.
func splitArgs(payload string) []string {
	if payload == "" {
		return nil
	}
	return strings.Split(payload, argSeparator)
}

// dispatch executes one verb, sending its reply(ies) on the appropriate
// outbound endpoint. It returns shutdown=true when the daemon should
// terminate after flushing state.
func (d *Dispatcher) dispatch(verb, payload string) (shutdown bool, err error) {
	switch {
	case strings.HasPrefix(verb, "FD_"):
		return d.dispatchBridge(verb, payload)
	case strings.HasPrefix(verb, "QH_"):
		return d.dispatchOperator(verb, payload)
	default:
		return false, d.replyBridge(ReplyFail)
	}
}

func (d *Dispatcher) dispatchBridge(verb, payload string) (bool, error) {
	switch verb {
	case FDExit:
		return true, d.replyBridge(ReplyAck)

	case FDTest:
		d.requests++
		return false, d.replyBridge(ReplyAck)

	case FDLog:
		log.Info().Str("bridge_log", payload).Msg("bridge log")
		return false, d.replyBridge(ReplyAck)

	case FDGetPath, FDGetPathWrite:
		var (
			path string
			err  error
		)
		if d.tagView {
			path, err = d.model.GetTaggedFilePath(payload)
		} else if verb == FDGetPathWrite {
			path, err = d.model.GetFilePathForWrite(payload)
		} else {
			path, err = d.model.GetFilePath(payload)
		}
		return false, d.replyErrOrValueTo(d.bridgePath, path, err)

	case FDIfDir:
		var isDir bool
		if d.tagView {
			_, err := d.model.ListTagChildren(payload)
			isDir = err == nil
		} else {
			_, err := d.model.ListFolder(payload)
			isDir = err == nil
		}
		if isDir {
			return false, d.replyBridge(ReplyTrue)
		}
		return false, d.replyBridge(ReplyFalse)

	case FDReadDir:
		var (
			entries []string
			err     error
		)
		if d.tagView {
			entries, err = d.model.ListTagChildren(payload)
		} else {
			entries, err = d.model.ListFolder(payload)
		}
		if err != nil {
			return false, d.replyErrnoTo(d.bridgePath, err)
		}
		return false, d.replyMultiPartTo(d.bridgePath, entries)

	case FDMkdir:
		var err error
		if d.tagView {
			err = d.model.CreateTag(payload)
		} else {
			err = d.model.CreateFolder(payload)
		}
		return false, d.replyAckOrErrnoTo(d.bridgePath, err)

	case FDRmdir:
		var err error
		if d.tagView {
			err = d.model.DeleteTag(payload)
		} else {
			err = d.model.DeleteFolder(payload)
		}
		return false, d.replyAckOrErrnoTo(d.bridgePath, err)

	case FDUnlink:
		var err error
		if d.tagView {
			err = d.model.UntagTaggedPath(payload)
		} else {
			_, err = d.model.DeleteFile(payload)
		}
		return false, d.replyAckOrErrnoTo(d.bridgePath, err)

	case FDRename:
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyBridge(ReplyFail)
		}
		var err error
		if d.tagView {
			err = d.model.RenameTaggedPath(args[0], args[1])
		} else {
			err = d.model.RenamePath(args[0], args[1])
		}
		if err != nil {
			return false, d.replyBridge(ReplyFail)
		}
		return false, d.replyBridge(ReplyAck)

	case FDTruncate:
		if d.tagView {
			return false, d.replyBridge(ReplyFail)
		}
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyBridge(ReplyFail)
		}
		length, convErr := strconv.ParseInt(args[1], 10, 64)
		if convErr != nil {
			return false, d.replyBridge(ReplyFail)
		}
		err := d.model.TruncateFile(args[0], length)
		return false, d.replyAckOrErrnoTo(d.bridgePath, err)

	case FDUpdate:
		if d.tagView {
			return false, d.replyBridge(ReplyFail)
		}
		err := d.model.UpdateFile(payload)
		return false, d.replyAckOrErrnoTo(d.bridgePath, err)

	case FDAddTemp:
		log.Warn().Msg("FD_ADD_TEMP is deprecated; CreateFile now allocates placeholders directly")
		return false, d.replyBridge(ReplyAck)

	default:
		return false, d.replyBridge(ReplyFail)
	}
}

// dispatchOperator handles QH_* verbs. Tag arguments arrive as tag paths
// ("/red"); since tag names are globally unique, the last path component
// names the tag passed to the model.
func (d *Dispatcher) dispatchOperator(verb, payload string) (bool, error) {
	switch verb {
	case QHExit:
		return true, d.replyOperator(ReplyAck)

	case QHTest:
		d.requests++
		return false, d.replyOperator(ReplyAck + " (messages dispatched: " + strconv.FormatUint(d.requests, 10) + ")")

	case QHTag:
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyOperator(ReplyInvalid)
		}
		err := d.model.TagFiles(args[0], path.Base(args[1]))
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHUntag:
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyOperator(ReplyInvalid)
		}
		err := d.model.UntagFiles(args[0], path.Base(args[1]))
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHNest:
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyOperator(ReplyInvalid)
		}
		err := d.model.NestTag(path.Base(args[0]), path.Base(args[1]))
		if err == model.ErrCycle {
			return false, d.replyOperator(ReplyCycleErr)
		}
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHUnnest:
		args := splitArgs(payload)
		if len(args) != 2 {
			return false, d.replyOperator(ReplyInvalid)
		}
		err := d.model.UnnestTag(path.Base(args[0]), path.Base(args[1]))
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHStats:
		stats, err := d.model.Stats()
		if err != nil {
			return false, d.replyErrnoTo(d.ctlPath, err)
		}
		return false, d.replyOperator(
			"files=" + strconv.Itoa(stats.Files) +
				" tags=" + strconv.Itoa(stats.Tags) +
				" blobs=" + strconv.Itoa(stats.Blobs))

	case QHSearch:
		args := splitArgs(payload)
		if len(args) < 2 {
			return false, d.replyOperator(ReplyInvalid)
		}
		strict := args[0] == "1"
		tags := make([]string, 0, len(args)-1)
		for _, t := range args[1:] {
			tags = append(tags, path.Base(t))
		}
		results, err := d.model.SearchByTags(tags, strict)
		if err != nil {
			return false, d.replyErrnoTo(d.ctlPath, err)
		}
		return false, d.replyMultiPartTo(d.ctlPath, results)

	case QHCreateTag:
		err := d.model.CreateTag(payload)
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHDeleteTag:
		err := d.model.DeleteTag(payload)
		return false, d.replyAckOrErrnoTo(d.ctlPath, err)

	case QHGetTags:
		fileID, err := d.resolveFileID(payload)
		if err != nil {
			return false, d.replyOperator(ReplyInvalid)
		}
		tags, err := d.model.GetFileTags(fileID)
		if err != nil {
			return false, d.replyErrnoTo(d.ctlPath, err)
		}
		return false, d.replyMultiPartTo(d.ctlPath, tags)

	default:
		return false, d.replyOperator(ReplyInvalid)
	}
}

// resolveFileID is a thin helper for QH_GET_TAGS, which is addressed by
// filesystem path rather than a raw file_id.
func (d *Dispatcher) resolveFileID(path string) (string, error) {
	if d.tagView {
		return d.model.FileIDForTaggedPath(path)
	}
	return d.model.FileIDForPath(path)
}
