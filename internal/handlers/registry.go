package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	PropertyHandler *PropertyHandler
	CategoryHandler *CategoryHandler
	DocumentHandler *DocumentHandler
	FileHandler     *FileHandler
}
