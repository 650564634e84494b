package game

import "github.com/lguibr/solopong/utils"

// AIController moves a paddle toward the ball at a bounded rate. It holds
// still while the paddle centre is within DeadZone of the ball centre, which
// together with the speed cap keeps it beatable.
type AIController struct {
	Speed    float64
	DeadZone float64
}

// Step moves paddle at most Speed toward ballCenterY and returns the applied
// displacement.
func (ai AIController) Step(paddle *Paddle, ballCenterY float64) float64 {
	offset := ballCenterY - paddle.CenterY()
	if utils.Abs(offset) <= ai.DeadZone {
		return 0
	}
	return paddle.Move(utils.Sign(offset) * ai.Speed)
}
