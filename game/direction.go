package game

// Direction rappresenta una direzione cardinale. The constants follow the
// clockwise ordering [Right, Down, Left, Up], so turning is a rotation
// through the sequence.
type Direction int

const (
	Right Direction = iota
	Down
	Left
	Up
)

// Action is a turn relative to the current heading.
type Action int

const (
	ActionStraight Action = iota
	ActionRight
	ActionLeft
)

// NumActions is the size of the (closed) action space.
const NumActions = 3

// Turn applies a relative action to the heading.
func (d Direction) Turn(a Action) Direction {
	switch a {
	case ActionRight:
		return (d + 1) % 4
	case ActionLeft:
		return (d + 3) % 4
	default:
		return d
	}
}

// TurnRight restituisce la direzione risultante da una rotazione a destra.
func (d Direction) TurnRight() Direction { return d.Turn(ActionRight) }

// TurnLeft restituisce la direzione risultante da una rotazione a sinistra.
func (d Direction) TurnLeft() Direction { return d.Turn(ActionLeft) }

// Delta converte una Direction in un vettore di spostamento unitario.
func (d Direction) Delta() Point {
	switch d {
	case Right:
		return Point{X: 1, Y: 0}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	default: // Up
		return Point{X: 0, Y: -1}
	}
}

func (d Direction) String() string {
	switch d {
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	default:
		return "UP"
	}
}
