package reconcile

// IDMap traduce los ids locales de los CREATE de un lote a los ids asignados por el servidor,
// para que entradas posteriores del mismo lote puedan referenciarlos.
type IDMap struct {
	ids map[string]string
}

// NewIDMap crea un mapa vacío.
func NewIDMap() *IDMap {
	return &IDMap{ids: make(map[string]string)}
}

// Bind registra localID → serverID para la colección.
func (m *IDMap) Bind(entityName, localID, serverID string) {
	if m == nil || localID == "" || serverID == "" {
		return
	}
	m.ids[entityName+"\x00"+localID] = serverID
}

// Resolve devuelve el id del servidor si id es un id local conocido; si no, id sin cambios.
func (m *IDMap) Resolve(entityName, id string) string {
	if m == nil || id == "" {
		return id
	}
	if server, ok := m.ids[entityName+"\x00"+id]; ok {
		return server
	}
	return id
}
