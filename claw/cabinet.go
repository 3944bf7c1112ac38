package claw

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/clawmachine/physics"
)

const floorThickness = 0.5

// BuildCabinet creates the static geometry: the pit floor with the bin
// opening cut out, the pit walls, the bin shaft with its rim and the bin
// floor.
func BuildCabinet(world physics.World, cfg Config) []physics.BodyHandle {
	if world == nil {
		return nil
	}
	cab := cfg.Cabinet
	h, b, t := cab.PitHalfSize, cab.BinHalfSize, cab.WallThick
	bx, bz := cfg.BinX, cfg.BinZ
	floorTop, floorBottom := cab.PitFloorY, cab.PitFloorY-floorThickness

	var handles []physics.BodyHandle
	add := func(minX, maxX, minY, maxY, minZ, maxZ float64) {
		if maxX-minX <= 0 || maxY-minY <= 0 || maxZ-minZ <= 0 {
			return
		}
		center := mgl64.Vec3{(minX+maxX)/2, (minY+maxY)/2, (minZ+maxZ)/2}
		half := mgl64.Vec3{(maxX-minX)/2, (maxY-minY)/2, (maxZ-minZ)/2}
		handles = append(handles, world.CreateStaticBox(center, half))
	}

	// Pit floor around the bin opening.
	add(-h, bx-b, floorBottom, floorTop, -h, h)
	add(bx+b, h, floorBottom, floorTop, -h, h)
	add(bx-b, bx+b, floorBottom, floorTop, -h, bz-b)
	add(bx-b, bx+b, floorBottom, floorTop, bz+b, h)

	// Pit walls.
	wallTop := cab.PitFloorY + cab.WallHeight
	add(-h-t, -h, floorBottom, wallTop, -h-t, h+t)
	add(h, h+t, floorBottom, wallTop, -h-t, h+t)
	add(-h, h, floorBottom, wallTop, -h-t, -h)
	add(-h, h, floorBottom, wallTop, h, h+t)

	// Bin shaft, standing RimHeight proud of the floor.
	rimTop := cab.PitFloorY + cab.RimHeight
	add(bx-b-t, bx-b, cab.BinFloorY, rimTop, bz-b-t, bz+b+t)
	add(bx+b, bx+b+t, cab.BinFloorY, rimTop, bz-b-t, bz+b+t)
	add(bx-b, bx+b, cab.BinFloorY, rimTop, bz-b-t, bz-b)
	add(bx-b, bx+b, cab.BinFloorY, rimTop, bz+b, bz+b+t)

	add(bx-b, bx+b, cab.BinFloorY-floorThickness, cab.BinFloorY, bz-b, bz+b)

	return handles
}
