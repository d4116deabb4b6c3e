package shaderedit

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/go-playground/assert/v2"
)

func TestParseProjectJwtUnverified(t *testing.T) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"project_id": "p1",
		"user_id":    "user1",
		"user_name":  "ada",
	})
	jwt, err := token.SignedString([]byte("not checked"))
	assert.Equal(t, err, nil)

	projectJwt, err := ParseProjectJwtUnverified(jwt)
	assert.Equal(t, err, nil)
	assert.Equal(t, *projectJwt, ProjectJwt{ProjectId: "p1", UserId: "user1", UserName: "ada"})

	_, err = ParseProjectJwtUnverified("not.a.jwt")
	assert.NotEqual(t, err, nil)
}
