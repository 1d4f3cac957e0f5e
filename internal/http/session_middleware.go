package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codearena/internal/domain"
	"codearena/internal/service"
)

// SessionCookieName es el nombre de la cookie de login.
const SessionCookieName = "session"

const (
	currentUserKey    = "current_user"
	currentSessionKey = "current_session"
)

// SessionAuthMiddleware lee la cookie de sesion, la valida contra el store y
// deja usuario y sesion en el contexto. Una cookie vencida o desconocida se
// limpia y corta con 401. La validacion puede renovar el vencimiento, asi que
// la cookie se reescribe siempre con el ExpiresAt vigente.
func SessionAuthMiddleware(sessions *service.SessionService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}

		session, user, err := sessions.ValidateToken(c.Request.Context(), token)
		if err != nil {
			clearSessionCookie(c, secure)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}

		setSessionCookie(c, token, session.ExpiresAt, secure)
		c.Set(currentUserKey, user)
		c.Set(currentSessionKey, session)
		c.Next()
	}
}

// RequireRole corta con 403 si el usuario autenticado no tiene ninguno de los
// roles indicados. Debe ir despues de SessionAuthMiddleware.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}

// CurrentUser obtiene el usuario autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// CurrentSession obtiene la sesion autenticada desde el contexto.
func CurrentSession(c *gin.Context) (domain.Session, bool) {
	val, ok := c.Get(currentSessionKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := val.(domain.Session)
	return session, ok
}

// writeSessionCookie agrega el Set-Cookie descartando cualquier escritura
// previa de la misma cookie en la respuesta. El middleware reescribe la cookie
// antes de correr el handler; si el handler la limpia (logout) tiene que
// quedar un solo header y ganar la ultima escritura.
func writeSessionCookie(c *gin.Context, cookie *http.Cookie) {
	header := c.Writer.Header()
	existing := header.Values("Set-Cookie")
	header.Del("Set-Cookie")
	for _, v := range existing {
		if !strings.HasPrefix(v, SessionCookieName+"=") {
			header.Add("Set-Cookie", v)
		}
	}
	http.SetCookie(c.Writer, cookie)
}

// setSessionCookie escribe la cookie de sesion. Se usa http.SetCookie directo
// porque gin.Context.SetCookie no permite fijar Expires.
func setSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	writeSessionCookie(c, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c *gin.Context, secure bool) {
	writeSessionCookie(c, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
