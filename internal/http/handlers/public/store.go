package public

import (
	"strconv"

	"github.com/mukkai/mukkai-go/internal/http/dto"
	"github.com/mukkai/mukkai-go/internal/http/handlers/shared"
	"github.com/mukkai/mukkai-go/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SearchStores 按分类检索店铺
func (h *Handler) SearchStores(c *gin.Context) {
	stores, err := h.StoreService.Search(c.Query("category"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"stores": dto.FromStores(stores)})
}

// GetStore 获取店铺详情
func (h *Handler) GetStore(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "店铺 ID 不合法")
		return
	}
	store, serr := h.StoreService.GetByID(uint(id))
	if serr != nil {
		shared.RespondServiceError(c, serr)
		return
	}
	response.Success(c, dto.FromStore(store))
}

// SearchStoreMenus 获取店铺菜单
func (h *Handler) SearchStoreMenus(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Query("storeId"), 10, 64)
	if err != nil || storeID == 0 {
		response.BadRequest(c, "店铺 ID 不合法")
		return
	}
	menus, serr := h.MenuService.SearchByStore(uint(storeID))
	if serr != nil {
		shared.RespondServiceError(c, serr)
		return
	}
	response.Success(c, gin.H{"menus": dto.FromStoreMenus(menus)})
}
