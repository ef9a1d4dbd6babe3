/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package agent

import "dirpx.dev/mbx/apis"

// nameList is the response of GET /mbeans.
type nameList struct {
	Names []string `json:"names"`
}

type attributeInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Readable    bool   `json:"readable"`
	Writable    bool   `json:"writable"`
}

type parameterInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type operationInfo struct {
	Name        string          `json:"name"`
	Signature   []parameterInfo `json:"signature"`
	ReturnType  string          `json:"return_type"`
	Description string          `json:"description"`
}

type notificationInfo struct {
	Types            []string          `json:"types"`
	NotificationType string            `json:"notification_type"`
	Description      string            `json:"description"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// descriptorInfo is the response of GET /mbeans/{name}.
type descriptorInfo struct {
	ObjectName    string             `json:"object_name"`
	ClassName     string             `json:"class_name"`
	Description   string             `json:"description"`
	Attributes    []attributeInfo    `json:"attributes"`
	Operations    []operationInfo    `json:"operations"`
	Notifications []notificationInfo `json:"notifications"`
}

func describe(name string, d apis.Descriptor) descriptorInfo {
	out := descriptorInfo{
		ObjectName:    name,
		ClassName:     d.ClassName(),
		Description:   d.Description(),
		Attributes:    []attributeInfo{},
		Operations:    []operationInfo{},
		Notifications: []notificationInfo{},
	}
	for _, a := range d.Attributes() {
		out.Attributes = append(out.Attributes, attributeInfo(a))
	}
	for _, op := range d.Operations() {
		sig := make([]parameterInfo, len(op.Signature))
		for i, p := range op.Signature {
			sig[i] = parameterInfo(p)
		}
		out.Operations = append(out.Operations, operationInfo{
			Name:        op.Name,
			Signature:   sig,
			ReturnType:  op.ReturnType,
			Description: op.Description,
		})
	}
	for _, n := range d.Notifications() {
		out.Notifications = append(out.Notifications, notificationInfo{
			Types:            n.Types,
			NotificationType: n.NotificationType,
			Description:      n.Description,
			Fields:           n.Fields(),
		})
	}
	return out
}

type attributeValue struct {
	Name  string `json:"name" validate:"required"`
	Value any    `json:"value"`
}

type attributeList struct {
	Attributes []attributeValue `json:"attributes" validate:"required,min=1,dive"`
}

type setRequest struct {
	Value any `json:"value"`
}

type invokeRequest struct {
	Args      []any    `json:"args"`
	Signature []string `json:"signature" validate:"omitempty,dive,required"`
}

type valueResponse struct {
	Value any `json:"value"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

func toList(attrs []apis.Attribute) attributeList {
	out := attributeList{Attributes: make([]attributeValue, len(attrs))}
	for i, a := range attrs {
		out.Attributes[i] = attributeValue{Name: a.Name, Value: a.Value}
	}
	return out
}

func fromList(l attributeList) []apis.Attribute {
	out := make([]apis.Attribute, len(l.Attributes))
	for i, a := range l.Attributes {
		out[i] = apis.Attribute{Name: a.Name, Value: a.Value}
	}
	return out
}
