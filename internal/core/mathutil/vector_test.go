package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Transform_MulThenInverse_IsIdentity(t *testing.T) {
	// Arrange
	parent := Transform{Position: Vec3{1, 2, 3}, Rotation: QIdentity(), Scale: 2}
	child := Transform{Position: Vec3{0, 1, 0}, Rotation: QIdentity(), Scale: 1}

	// Act
	global := parent.Mul(child)
	recoveredChild := parent.Inverse().Mul(global)

	// Assert
	assert.True(t, recoveredChild.Equal(child))
}

func Test_Quat_RotateIdentity_ReturnsSameVector(t *testing.T) {
	// Arrange
	q := QIdentity()
	v := Vec3{1, 2, 3}

	// Act
	rotated := q.Rotate(v)

	// Assert
	assert.True(t, rotated.Equal(v))
}

func Test_Vec3_AddAndSub_AreInverses(t *testing.T) {
	// Arrange
	a := Vec3{1, 2, 3}
	b := Vec3{4, -1, 0.5}

	// Act
	sum := a.Add(b)
	back := sum.Sub(b)

	// Assert
	assert.True(t, back.Equal(a))
}
