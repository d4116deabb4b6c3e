package shaderedit

import (
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// claims of the session token issued by the project service.
// The token is verified by the service; clients only read it.
type ProjectJwt struct {
	ProjectId string
	UserId    string
	UserName  string
}

func ParseProjectJwtUnverified(jwt string) (*ProjectJwt, error) {
	parser := gojwt.NewParser()
	token, _, err := parser.ParseUnverified(jwt, gojwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("Unexpected claims: %T", token.Claims)
	}

	projectJwt := &ProjectJwt{}

	if projectId, ok := claims["project_id"].(string); ok {
		projectJwt.ProjectId = projectId
	}
	if userId, ok := claims["user_id"].(string); ok {
		projectJwt.UserId = userId
	}
	if userName, ok := claims["user_name"].(string); ok {
		projectJwt.UserName = userName
	}

	return projectJwt, nil
}
