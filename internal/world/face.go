package world

// Face is one of the six axis-aligned directions, ordered -X, +X, -Y, +Y, -Z, +Z.
type Face uint8

const (
	FaceNegX Face = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// Faces lists every face in index order.
var Faces = [6]Face{FaceNegX, FacePosX, FaceNegY, FacePosY, FaceNegZ, FacePosZ}

var faceOffsets = [6]ChunkCoord{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

// Axis returns 0, 1 or 2 for X, Y or Z.
func (f Face) Axis() int { return int(f) / 2 }

// Sign returns -1 for negative faces and +1 for positive ones.
func (f Face) Sign() int {
	if f%2 == 0 {
		return -1
	}
	return 1
}

// Offset is the unit step towards the neighbour across this face.
func (f Face) Offset() ChunkCoord { return faceOffsets[f] }

func (f Face) String() string {
	return [...]string{"-x", "+x", "-y", "+y", "-z", "+z"}[f]
}
