package exmdb

import "fmt"

// CallID selects the remote procedure of a request frame.
type CallID uint8

const (
	CallConnect                  CallID = 0x00
	CallPingStore                CallID = 0x02
	CallGetStoreAllProptags      CallID = 0x08
	CallGetStoreProperties       CallID = 0x09
	CallSetStoreProperties       CallID = 0x0a
	CallRemoveStoreProperties    CallID = 0x0b
	CallCreateFolderByProperties CallID = 0x15
	CallGetFolderProperties      CallID = 0x17
	CallSetFolderProperties      CallID = 0x18
	CallDeleteFolder             CallID = 0x1a
	CallLoadHierarchyTable       CallID = 0x26
	CallLoadPermissionTable      CallID = 0x2a
	CallUnloadTable              CallID = 0x2c
	CallQueryTable               CallID = 0x2e
	CallAllocateCn               CallID = 0x5c
	CallUpdateFolderPermission   CallID = 0x65
	CallUnloadStore              CallID = 0x80
)

var callNames = map[CallID]string{
	CallConnect:                  "connect",
	CallPingStore:                "ping_store",
	CallGetStoreAllProptags:      "get_store_all_proptags",
	CallGetStoreProperties:       "get_store_properties",
	CallSetStoreProperties:       "set_store_properties",
	CallRemoveStoreProperties:    "remove_store_properties",
	CallCreateFolderByProperties: "create_folder_by_properties",
	CallGetFolderProperties:      "get_folder_properties",
	CallSetFolderProperties:      "set_folder_properties",
	CallDeleteFolder:             "delete_folder",
	CallLoadHierarchyTable:       "load_hierarchy_table",
	CallLoadPermissionTable:      "load_permission_table",
	CallUnloadTable:              "unload_table",
	CallQueryTable:               "query_table",
	CallAllocateCn:               "allocate_cn",
	CallUpdateFolderPermission:   "update_folder_permission",
	CallUnloadStore:              "unload_store",
}

// String returns the lower-case call name used in logs and metric labels.
func (c CallID) String() string {
	if name, ok := callNames[c]; ok {
		return name
	}
	return fmt.Sprintf("call_0x%02x", uint8(c))
}
