package cli

import (
	"context"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/pkg/domain"
)

// Step sizes of the keyboard sliders.
const (
	SpeedStep = 5
	SizeStep  = 5
)

const (
	keyCtrlC = 3
	keyCtrlD = 4
)

// HandleKey applies one key press to sess. It reports whether the user asked to quit.
// Keys that are not valid in the current status are ignored.
func HandleKey(ctx context.Context, sess *sortvis.Session, key byte) (quit bool) {
	switch key {
	case 'q', 'Q', keyCtrlC, keyCtrlD:
		return true
	case 's', 'S':
		sess.Start()
	case 'p', 'P', ' ':
		sess.TogglePause()
	case 'n', 'N':
		sess.Regenerate()
	case 'r', 'R':
		if err := sess.HardReset(ctx); err != nil {
			sess.Logger().Error("Hard reset failed", "err", err)
		}
	case '+', '=':
		sess.SetSpeed(sess.Snapshot().Speed + SpeedStep)
	case '-', '_':
		sess.SetSpeed(sess.Snapshot().Speed - SpeedStep)
	case '>', '.':
		sess.SetSize(len(sess.Snapshot().Values) + SizeStep)
	case '<', ',':
		sess.SetSize(len(sess.Snapshot().Values) - SizeStep)
	default:
		algorithms := domain.Algorithms()
		if key >= '1' && int(key-'1') < len(algorithms) {
			_, _ = sess.SetAlgorithm(string(algorithms[key-'1']))
		}
	}
	return false
}
