package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/academy-cms/internal/admins"
	"github.com/luminedge/academy-cms/pkg/middleware"
)

// AdminsHandler exposes the admin registry. Listing is open to any admin;
// adding and removing require the super-admin role.
type AdminsHandler struct {
	svc *admins.Service
}

func NewAdminsHandler(svc *admins.Service) *AdminsHandler {
	return &AdminsHandler{svc: svc}
}

// Register routes under /admins
func (h *AdminsHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/admins")
	a.GET("", middleware.RequireRole(h.svc, admins.RoleAdmin), h.List)
	a.POST("", middleware.RequireRole(h.svc, admins.RoleSuperAdmin), h.Add)
	a.DELETE("/:uid", middleware.RequireRole(h.svc, admins.RoleSuperAdmin), h.Remove)
}

func (h *AdminsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": list})
}

type addAdminRequest struct {
	UID   string `json:"uid" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

func (h *AdminsHandler) Add(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := req.Role
	if role == "" {
		role = admins.RoleAdmin
	}
	if role != admins.RoleAdmin && role != admins.RoleSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	addedBy := middleware.ClaimString(c, "email")
	a, err := h.svc.Add(c.Request.Context(), req.UID, req.Email, role, addedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"admin": a})
}

func (h *AdminsHandler) Remove(c *gin.Context) {
	uid := c.Param("uid")
	// an admin removing themselves would lock the registry out of repair
	if uid == middleware.ClaimString(c, "sub") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		return
	}
	if err := h.svc.Remove(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
