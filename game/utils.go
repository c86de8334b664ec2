package game

// abs restituisce il valore assoluto di un intero.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// manhattan calcola la distanza di Manhattan tra due punti.
func manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}
