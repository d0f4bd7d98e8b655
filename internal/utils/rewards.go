package utils

// CanRedeem reports whether a balance covers a voucher's price
func CanRedeem(userPoints, pointsRequired int64) bool {
	return userPoints >= pointsRequired
}

// PointsShort is how many more points are needed, or 0 when affordable
func PointsShort(userPoints, pointsRequired int64) int64 {
	if CanRedeem(userPoints, pointsRequired) {
		return 0
	}
	return pointsRequired - userPoints
}

// ProjectedBalance is the balance left after paying pointsRequired
func ProjectedBalance(userPoints, pointsRequired int64) int64 {
	return userPoints - pointsRequired
}
